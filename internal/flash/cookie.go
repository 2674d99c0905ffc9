package flash

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CookieName is the cookie carrying a signed notice.
const CookieName = "todo_flash"

type flashClaims struct {
	Message string `json:"msg"`
	jwt.RegisteredClaims
}

// CookieStore keeps the notice in the client's cookie as an HS256-signed token.
type CookieStore struct {
	secret []byte
	opts   Options
	now    func() time.Time
}

func NewCookieStore(secret string, opts Options) (*CookieStore, error) {
	if secret == "" {
		return nil, fmt.Errorf("flash: cookie secret is required")
	}
	return &CookieStore{secret: []byte(secret), opts: opts, now: time.Now}, nil
}

func (s *CookieStore) Set(w http.ResponseWriter, r *http.Request, msg string) error {
	issued := s.now()
	claims := flashClaims{
		Message: msg,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(s.opts.ttl())),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return fmt.Errorf("failed to sign flash: %w", err)
	}

	setCookie(w, CookieName, signed, s.opts.ttl(), s.opts.Secure)
	return nil
}

// Pop returns the pending notice and expires the cookie. A forged or
// expired cookie is discarded and yields no notice.
func (s *CookieStore) Pop(w http.ResponseWriter, r *http.Request) (string, error) {
	c, err := r.Cookie(CookieName)
	if errors.Is(err, http.ErrNoCookie) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read flash cookie: %w", err)
	}
	clearCookie(w, CookieName, s.opts.Secure)

	var claims flashClaims
	_, err = jwt.ParseWithClaims(c.Value, &claims, func(token *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		slog.DebugContext(r.Context(), "discarding flash cookie", "error", err)
		return "", nil
	}

	return claims.Message, nil
}

var _ Store = (*CookieStore)(nil)
