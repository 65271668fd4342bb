package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

type contextKey string

const (
	SubjectKey contextKey = "subject"
	RoleKey    contextKey = "role"
)

var (
	errMissingHeader = errors.New("missing authorization header")
	errHeaderFormat  = errors.New("invalid authorization header format")
	errClaims        = errors.New("invalid token claims")
)

type tokenVerifier struct {
	parser  *jwt.Parser
	keyFunc jwt.Keyfunc
}

func newTokenVerifier(jwtSecret string) tokenVerifier {
	return tokenVerifier{
		parser: jwt.NewParser(jwt.WithValidMethods([]string{
			jwt.SigningMethodHS256.Alg(),
			jwt.SigningMethodHS384.Alg(),
			jwt.SigningMethodHS512.Alg(),
		})),
		keyFunc: func(token *jwt.Token) (interface{}, error) {
			return []byte(jwtSecret), nil
		},
	}
}

// verify checks the bearer token on r and returns a context carrying its
// subject and role.
func (v tokenVerifier) verify(r *http.Request) (context.Context, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, errMissingHeader
	}

	tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
	if !ok || tokenString == "" || strings.Contains(tokenString, " ") {
		return nil, errHeaderFormat
	}

	claims := jwt.MapClaims{}
	if _, err := v.parser.ParseWithClaims(tokenString, claims, v.keyFunc); err != nil {
		return nil, err
	}

	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return nil, errClaims
	}
	role, _ := claims["role"].(string)

	ctx := context.WithValue(r.Context(), SubjectKey, subject)
	return context.WithValue(ctx, RoleKey, role), nil
}

// AuthMiddleware validates HMAC-signed bearer tokens and puts the subject
// and role claims on the request context. Tokens are issued elsewhere.
func AuthMiddleware(jwtSecret string, logger *zap.Logger) func(http.Handler) http.Handler {
	verifier := newTokenVerifier(jwtSecret)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := GetSubject(r.Context()); ok {
				next.ServeHTTP(w, r)
				return
			}

			ctx, err := verifier.verify(r)
			if err != nil {
				logger.Debug("Token validation failed", zap.Error(err))
				switch {
				case errors.Is(err, errMissingHeader), errors.Is(err, errHeaderFormat), errors.Is(err, errClaims):
					RespondWithError(w, http.StatusUnauthorized, err.Error())
				case errors.Is(err, jwt.ErrTokenExpired):
					RespondWithError(w, http.StatusUnauthorized, "token expired")
				default:
					RespondWithError(w, http.StatusUnauthorized, "invalid token")
				}
				return
			}

			subject, _ := GetSubject(ctx)
			role, _ := GetRole(ctx)
			logger.Debug("Caller authenticated",
				zap.String("subject", subject),
				zap.String("role", role),
			)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuthMiddleware identifies callers that present a valid bearer
// token and lets every other request through anonymously. It runs ahead of
// the rate limiter so authenticated callers get their own bucket.
func OptionalAuthMiddleware(jwtSecret string, logger *zap.Logger) func(http.Handler) http.Handler {
	verifier := newTokenVerifier(jwtSecret)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, err := verifier.verify(r)
			if err != nil {
				if !errors.Is(err, errMissingHeader) {
					logger.Debug("Ignoring unverifiable token", zap.Error(err))
				}
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSubject extracts the authenticated subject from request context
func GetSubject(ctx context.Context) (string, bool) {
	subject, ok := ctx.Value(SubjectKey).(string)
	return subject, ok
}

// GetRole extracts the caller's role from request context
func GetRole(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(RoleKey).(string)
	return role, ok
}
