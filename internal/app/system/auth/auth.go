package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/comicshelf/internal/app/system/jsonio"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Bearer tokens                                                                |
*─────────────────────────────────────────────────────────────────────────────*/

// ErrInvalidToken is returned for any token that cannot be trusted.
var ErrInvalidToken = errors.New("invalid token")

// Claims are the JWT claims accepted from the account service. The user id
// is read from user_id and falls back to sub.
type Claims struct {
	UserID string `json:"user_id,omitempty"`
	jwt.RegisteredClaims
}

// TokenService verifies (and, for tooling and tests, signs) HS256 tokens.
type TokenService struct {
	Secret []byte
	Issuer string
}

// NewTokenService builds a TokenService. An empty issuer disables the
// issuer check.
func NewTokenService(secret, issuer string) *TokenService {
	return &TokenService{Secret: []byte(secret), Issuer: issuer}
}

// Sign issues a token for userID valid for ttl.
func (ts *TokenService) Sign(userID primitive.ObjectID, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID.Hex(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.Issuer,
			Subject:   userID.Hex(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ts.Secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return s, nil
}

// Parse verifies tokenString and returns the user it identifies.
func (ts *TokenService) Parse(tokenString string) (*User, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if ts.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(ts.Issuer))
	}

	tok, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return ts.Secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return nil, ErrInvalidToken
	}

	id := claims.UserID
	if id == "" {
		id = claims.Subject
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: user id %q", ErrInvalidToken, id)
	}
	return &User{ID: oid}, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Current-User helper                                                          |
*─────────────────────────────────────────────────────────────────────────────*/

// User is the identity resolved from a bearer token.
type User struct {
	ID primitive.ObjectID
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user & "found?" flag.
func CurrentUser(r *http.Request) (*User, bool) {
	u, ok := r.Context().Value(currentUserKey).(*User)
	return u, ok && u != nil
}

// WithTestUser injects u into the request context. Intended for tests.
func WithTestUser(r *http.Request, u *User) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

// LoadUser returns middleware that resolves an Authorization bearer token
// into the request context. Missing or invalid tokens leave the request
// anonymous; RequireSignedIn decides whether that matters.
func LoadUser(ts *TokenService, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}
			u, err := ts.Parse(raw)
			if err != nil {
				logger.Debug("rejected bearer token",
					zap.String("path", r.URL.Path),
					zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, WithTestUser(r, u))
		})
	}
}

// RequireSignedIn rejects anonymous requests with a JSON 401.
func RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); ok {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("WWW-Authenticate", `Bearer realm="comicshelf"`)
		jsonio.Message(w, http.StatusUnauthorized, "Authentication required.")
	})
}

func bearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}
