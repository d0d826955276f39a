package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/devbyilmir/incidents-manager/internal/store"
)

// sessionCookie must match what the client sends; see api.SessionCookie.
const sessionCookie = "incident_access_token"

const userKey = "currentUser"

// requestLogger tags every request with a request ID and logs method,
// path, status, and latency through logrus.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.NewString()
		c.Set("requestID", requestID)
		c.Header("X-Request-ID", requestID)

		start := time.Now()
		c.Next()

		s.logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency":    time.Since(start).String(),
		}).Info("request")
	}
}

// requireUser authenticates the session cookie (or a Bearer header) and
// loads the account onto the context. Failures are 401 with a detail
// body, matching the contract.
func (s *Server) requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			detail(c, http.StatusUnauthorized, "authentication required")
			c.Abort()
			return
		}

		userID, err := s.parseToken(token)
		if err != nil {
			detail(c, http.StatusUnauthorized, "invalid or expired token")
			c.Abort()
			return
		}

		user, err := s.store.GetUserByID(c.Request.Context(), userID)
		if err != nil {
			detail(c, http.StatusUnauthorized, "user not found")
			c.Abort()
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	if ck, err := c.Cookie(sessionCookie); err == nil && ck != "" {
		return ck
	}
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

// mintToken issues an HS256 session token for the user.
func (s *Server) mintToken(userID int) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": userID,
		"jti": uuid.NewString(),
		"iat": now.Unix(),
		"exp": now.Add(s.opts.TokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.opts.JWTSecret))
}

// parseToken validates a session token and returns the subject user ID.
func (s *Server) parseToken(raw string) (int, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.opts.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, jwt.ErrTokenInvalidClaims
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, jwt.ErrTokenInvalidClaims
	}
	sub, ok := claims["sub"].(float64)
	if !ok {
		return 0, jwt.ErrTokenInvalidClaims
	}
	return int(sub), nil
}

// currentUser returns the account loaded by requireUser.
func currentUser(c *gin.Context) *store.User {
	if v, ok := c.Get(userKey); ok {
		if u, ok := v.(*store.User); ok {
			return u
		}
	}
	return nil
}
