package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/priyanshuchauhan/sweet-luxe-backend/internal/platform/logger"
)

// AuthError carries the auth provider's failure verbatim. The message is
// shown to the end user as-is; nothing is translated or retried.
type AuthError struct {
	StatusCode int
	Message    string
}

func (e *AuthError) Error() string {
	return e.Message
}

// Client is a thin gateway to the hosted auth provider (GoTrue-style
// REST API). It does not store credentials, hash passwords, or validate
// tokens itself; all of that belongs to the provider.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTPClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

type SignInResult struct {
	UserID      string
	AccessToken string
}

type signInResponse struct {
	AccessToken string `json:"access_token"`
	User        struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

type signUpResponse struct {
	ID string `json:"id"`
}

// providerError matches the provider's error payloads; it uses either
// {"error","error_description"} or {"msg"} depending on the endpoint.
type providerError struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Msg              string `json:"msg"`
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*SignInResult, error) {
	body := map[string]string{"email": email, "password": password}
	resp, err := c.post(ctx, "/token?grant_type=password", "", body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.authError(resp)
	}

	var out signInResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		logger.Error("IdentityClient.SignIn: decode failed", err)
		return nil, fmt.Errorf("failed to decode auth provider response: %w", err)
	}
	return &SignInResult{UserID: out.User.ID, AccessToken: out.AccessToken}, nil
}

// SignUp registers a new account with the provider. The account stays
// pending until the emailed verification link is followed.
func (c *Client) SignUp(ctx context.Context, email, password, fullName string) (string, error) {
	body := map[string]interface{}{
		"email":    email,
		"password": password,
		"data":     map[string]string{"full_name": fullName},
	}
	resp, err := c.post(ctx, "/signup", "", body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", c.authError(resp)
	}

	var out signUpResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		logger.Error("IdentityClient.SignUp: decode failed", err)
		return "", fmt.Errorf("failed to decode auth provider response: %w", err)
	}
	return out.ID, nil
}

func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	resp, err := c.post(ctx, "/logout", accessToken, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return c.authError(resp)
	}
	return nil
}

func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	resp, err := c.post(ctx, "/recover", "", map[string]string{"email": email})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.authError(resp)
	}
	return nil
}

// UpdatePassword sets a new password for the session holder. Used by the
// reset-password flow after the recovery link established a session.
func (c *Client) UpdatePassword(ctx context.Context, accessToken, newPassword string) error {
	resp, err := c.request(ctx, http.MethodPut, "/user", accessToken, map[string]string{"password": newPassword})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.authError(resp)
	}
	return nil
}

func (c *Client) VerifyEmail(ctx context.Context, token string) error {
	body := map[string]string{"type": "email", "token": token}
	resp, err := c.post(ctx, "/verify", "", body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.authError(resp)
	}
	return nil
}

// OAuthRedirectURL builds the provider URL the browser is redirected to
// for third-party sign-in. The provider handles the whole flow from there.
func (c *Client) OAuthRedirectURL(provider string) string {
	return fmt.Sprintf("%s/authorize?provider=%s", c.BaseURL, url.QueryEscape(provider))
}

func (c *Client) post(ctx context.Context, path, accessToken string, body interface{}) (*http.Response, error) {
	return c.request(ctx, http.MethodPost, path, accessToken, body)
}

func (c *Client) request(ctx context.Context, method, path, accessToken string, body interface{}) (*http.Response, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, fmt.Errorf("failed to encode auth provider request: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, &buf)
	if err != nil {
		logger.Error("IdentityClient: NewRequest failed", err)
		return nil, fmt.Errorf("failed to create request to auth provider: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("apikey", c.APIKey)
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		logger.Error("IdentityClient: HTTPClient.Do failed", err)
		return nil, fmt.Errorf("failed to call auth provider: %w", err)
	}
	return resp, nil
}

// authError surfaces the provider's message verbatim to the caller.
func (c *Client) authError(resp *http.Response) error {
	var pe providerError
	message := http.StatusText(resp.StatusCode)
	if err := json.NewDecoder(resp.Body).Decode(&pe); err == nil {
		switch {
		case pe.Msg != "":
			message = pe.Msg
		case pe.ErrorDescription != "":
			message = pe.ErrorDescription
		case pe.Error != "":
			message = pe.Error
		}
	}
	return &AuthError{StatusCode: resp.StatusCode, Message: message}
}
