package validator

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lestrrat-go/jwx/jwa"
	"github.com/lestrrat-go/jwx/jwt"
)

type key string

const subjectKey key = "subject"

// Subject is the verified identity behind a request.
type Subject struct {
	ID string
}

// FromContext returns the verified subject stored by the middleware.
func FromContext(ctx context.Context) (*Subject, bool) {
	s, ok := ctx.Value(string(subjectKey)).(*Subject)
	return s, ok
}

var (
	ErrNoAuthHeader      = errors.New("Authorization header is missing")
	ErrInvalidAuthHeader = errors.New("Authorization header is malformed")
)

// GetJWSFromRequest extracts a JWS string from an Authorization: Bearer <jws> header
func GetJWSFromRequest(req *http.Request) (string, error) {
	authHdr := req.Header.Get("Authorization")
	// Check for the Authorization header.
	if authHdr == "" {
		return "", ErrNoAuthHeader
	}
	// We expect a header value of the form "Bearer <token>", with 1 space after
	// Bearer, per spec.
	prefix := "Bearer "
	if !strings.HasPrefix(authHdr, prefix) {
		return "", ErrInvalidAuthHeader
	}
	return strings.TrimPrefix(authHdr, prefix), nil
}

// Middleware verifies the bearer token and stores the subject on the gin
// context so handlers can enforce ownership.
func Middleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		jws, err := GetJWSFromRequest(c.Request)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		token, err := jwt.ParseString(
			jws,
			jwt.WithVerify(jwa.HS256, secret),
			jwt.WithValidate(true),
		)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		if token.Subject() == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token has no subject"})
			return
		}

		c.Set(string(subjectKey), &Subject{ID: token.Subject()})
		c.Next()
	}
}
