package identity

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/priyanshuchauhan/sweet-luxe-backend/internal/platform/logger"
	"github.com/priyanshuchauhan/sweet-luxe-backend/internal/profile/domain"
	"github.com/priyanshuchauhan/sweet-luxe-backend/internal/profile/repository"
)

type SessionKind int

const (
	SessionAnonymous SessionKind = iota
	SessionCustomer
	SessionAdmin
)

// Session is the per-request authorization context, resolved once by the
// middleware and passed explicitly to services. Session validity and the
// role flag are separate checks; both are required for admin actions.
type Session struct {
	Kind        SessionKind
	UserID      string
	Email       string
	AccessToken string
}

func (s Session) Authenticated() bool {
	return s.Kind != SessionAnonymous
}

func (s Session) IsAdmin() bool {
	return s.Kind == SessionAdmin
}

// RoleResolver is implemented by the profile service.
type RoleResolver interface {
	GetRole(ctx context.Context, userID string) (domain.Role, error)
}

const sessionContextKey = "sweetluxe.session"

// SetSession attaches a resolved session to the request. Outside the
// middleware this is only useful to tests.
func SetSession(c *gin.Context, sess Session) {
	c.Set(sessionContextKey, sess)
}

// SessionFromContext returns the session the middleware resolved, or an
// anonymous session when none was.
func SessionFromContext(c *gin.Context) Session {
	if v, ok := c.Get(sessionContextKey); ok {
		if sess, ok := v.(Session); ok {
			return sess
		}
	}
	return Session{Kind: SessionAnonymous}
}

// NewSessionMiddleware verifies the provider-issued bearer token (HS256,
// shared secret) and resolves the caller's role. Requests without a
// usable token proceed as anonymous; rejection is left to RequireAuth
// and RequireAdmin on the routes that need it.
func NewSessionMiddleware(jwtSecret []byte, roles RoleResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := Session{Kind: SessionAnonymous}
		defer func() {
			SetSession(c, sess)
			c.Next()
		}()

		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			return
		}
		tokenString := strings.TrimPrefix(header, "Bearer ")

		claims := jwt.MapClaims{}
		_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			return jwtSecret, nil
		}, jwt.WithValidMethods([]string{"HS256"}))
		if err != nil {
			return
		}

		userID, err := claims.GetSubject()
		if err != nil || userID == "" {
			return
		}
		email, _ := claims["email"].(string)

		role, err := roles.GetRole(c.Request.Context(), userID)
		if err != nil {
			// A valid token without a profile record carries no
			// authorization; treat the caller as anonymous.
			if !errors.Is(err, repository.ErrProfileNotFound) {
				logger.Error("SessionMiddleware: role lookup failed for user "+userID, err)
			}
			return
		}

		kind := SessionCustomer
		if role == domain.RoleAdmin {
			kind = SessionAdmin
		}
		sess = Session{Kind: kind, UserID: userID, Email: email, AccessToken: tokenString}
	}
}

// RequireAuth rejects anonymous callers.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !SessionFromContext(c).Authenticated() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "sign in required"})
			return
		}
		c.Next()
	}
}

// RequireAdmin rejects callers whose profile role is not admin, even
// when the session itself is valid.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := SessionFromContext(c)
		if !sess.Authenticated() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "sign in required"})
			return
		}
		if !sess.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin privileges required"})
			return
		}
		c.Next()
	}
}
