// internal/app/system/auth/auth.go
package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// SessionUser is what we decode from a bearer token & inject into r.Context().
// It is refreshed from the database on every request via the UserFetcher, so
// role changes and deletions take effect immediately rather than at token
// expiry.
type SessionUser struct {
	ID      string
	Name    string
	Email   string
	Role    string
	BatchID string // hex of the user's batch, empty when unassigned
	Stars   int
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user & "found?" flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok
}

// UserFetcher loads fresh user data for the given user ID.
// Implementations return nil when the user does not exist (or should be
// treated as signed out) so stale tokens fail closed.
type UserFetcher interface {
	FetchUser(ctx context.Context, userID string) *SessionUser
}

// Claims is the JWT payload. Only the subject (user ID) is authoritative;
// everything else is re-read from the database per request.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// TokenManager issues and verifies bearer tokens. It is constructed once in
// bootstrap and passed to the features that need it; there is no package
// global.
type TokenManager struct {
	key     []byte
	issuer  string
	expiry  time.Duration
	fetcher UserFetcher
	log     *zap.Logger
}

// NewTokenManager builds a TokenManager with the given signing key and token
// lifetime.
func NewTokenManager(signingKey, issuer string, expiry time.Duration, logger *zap.Logger) (*TokenManager, error) {
	if signingKey == "" {
		return nil, fmt.Errorf("token signing key is empty; provide ≥32 random chars")
	}
	if len(signingKey) < 32 {
		logger.Warn("token signing key is short; 32+ chars recommended",
			zap.Int("length", len(signingKey)))
	}
	return &TokenManager{
		key:    []byte(signingKey),
		issuer: issuer,
		expiry: expiry,
		log:    logger,
	}, nil
}

// SetUserFetcher wires the database-backed user lookup used by LoadBearerUser.
func (tm *TokenManager) SetUserFetcher(f UserFetcher) { tm.fetcher = f }

// IssueToken mints a signed HS256 token for the given user ID and role.
func (tm *TokenManager) IssueToken(userID, role string) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tm.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.expiry)),
		},
		Role: role,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString(tm.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return ss, nil
}

// VerifyToken parses and validates a token string, returning its claims.
func (tm *TokenManager) VerifyToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return tm.key, nil
	}, jwt.WithIssuer(tm.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// LoadBearerUser injects the user into context when a valid Authorization
// bearer token is present. Requests without a token (or with a bad one)
// continue unauthenticated; RequireSignedIn / RequireRole reject them later.
func (tm *TokenManager) LoadBearerUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr := bearerToken(r)
		if tokenStr == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := tm.VerifyToken(tokenStr)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		if tm.fetcher != nil {
			if u := tm.fetcher.FetchUser(r.Context(), claims.Subject); u != nil {
				r = withUser(r, u)
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSignedIn ensures there is a user in context (set by LoadBearerUser).
// API callers get a plain 401 JSON body.
func RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); ok {
			next.ServeHTTP(w, r)
			return
		}
		writeJSONError(w, http.StatusUnauthorized, "authentication required")
	})
}

// RequireRole ensures there is a user with one of the required roles in
// context. Missing user → 401; wrong role → 403.
func RequireRole(allowed ...string) func(http.Handler) http.Handler {
	set := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		set[strings.ToLower(strings.TrimSpace(role))] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := CurrentUser(r)
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			if _, has := set[strings.ToLower(u.Role)]; !has {
				writeJSONError(w, http.StatusForbidden, "access denied")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithTestUser injects a user directly into the request context, bypassing
// token verification. For handler tests only.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

// helpers

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(h, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, prefix))
}

// writeJSONError keeps middleware rejections self-contained; handlers use
// the respond package for everything else.
func writeJSONError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	fmt.Fprintf(w, "{\"message\":%q}\n", msg)
}
