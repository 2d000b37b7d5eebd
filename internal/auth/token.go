package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token validation failures. Every class collapses to the same 401 response
// at the transport boundary; the distinction exists for logging.
var (
	// ErrTokenMalformed is returned when the input is empty or does not
	// parse as a three-part compact JWT.
	ErrTokenMalformed = errors.New("token malformed")

	// ErrTokenInvalidSignature is returned when the signature does not
	// verify against the server secret.
	ErrTokenInvalidSignature = errors.New("token signature invalid")

	// ErrTokenExpired is returned when the token parsed and verified but
	// its expiry has passed.
	ErrTokenExpired = errors.New("token expired")
)

// TokenService issues and validates signed session tokens. Tokens are
// self-contained HS256 JWTs carrying {sub, iat, exp}; there is no
// server-side session state. The secret and lifetime are fixed at
// construction and never mutated.
type TokenService struct {
	secret   []byte
	lifetime time.Duration
	now      func() time.Time
}

// NewTokenService constructs a TokenService with the given signing secret
// and token lifetime.
func NewTokenService(secret string, lifetime time.Duration) *TokenService {
	return &TokenService{
		secret:   []byte(secret),
		lifetime: lifetime,
		now:      time.Now,
	}
}

// Lifetime returns the configured token validity duration.
func (s *TokenService) Lifetime() time.Duration {
	return s.lifetime
}

// Issue signs a token for the given user id. Claims use whole-second
// timestamps, so two tokens for the same subject issued within the same
// second are byte-identical; there is no nonce.
func (s *TokenService) Issue(userID int64) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetime)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Validate verifies the token signature and expiry and returns the subject
// user id. Empty input is reported as malformed, never a panic.
func (s *TokenService) Validate(tokenString string) (int64, error) {
	if tokenString == "" {
		return 0, ErrTokenMalformed
	}

	claims := jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(
		tokenString,
		&claims,
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, ErrTokenInvalidSignature
			}
			return s.secret, nil
		},
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return 0, classifyTokenError(err)
	}
	if !token.Valid {
		return 0, ErrTokenInvalidSignature
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID < 1 {
		return 0, ErrTokenMalformed
	}
	return userID, nil
}

func classifyTokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrTokenMalformed
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, ErrTokenInvalidSignature):
		return ErrTokenInvalidSignature
	default:
		return ErrTokenMalformed
	}
}
