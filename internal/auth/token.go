package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenPurpose distinguishes session tokens from password-reset tokens so
// one can never be replayed as the other.
type TokenPurpose string

const (
	PurposeSession TokenPurpose = "session"
	PurposeReset   TokenPurpose = "reset"
)

var (
	// ErrTokenInvalid indicates a token whose signature, structure, or
	// purpose claim does not check out.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrTokenExpired indicates a correctly signed token past its expiry.
	ErrTokenExpired = errors.New("token expired")
)

// Claims is the verified content of a token.
type Claims struct {
	UserID  int64
	Purpose TokenPurpose
}

type tokenClaims struct {
	jwt.RegisteredClaims
	Purpose TokenPurpose `json:"purpose"`
}

// TokenIssuer creates and verifies HS256-signed bearer tokens.
type TokenIssuer struct {
	secret     []byte
	sessionTTL time.Duration
	resetTTL   time.Duration
}

// NewTokenIssuer builds an issuer from the signing secret and the per-purpose
// lifetimes. An empty secret is a configuration error and must be treated as
// fatal by the caller.
func NewTokenIssuer(secret string, sessionTTL, resetTTL time.Duration) (*TokenIssuer, error) {
	if secret == "" {
		return nil, errors.New("token signing secret is required")
	}
	return &TokenIssuer{
		secret:     []byte(secret),
		sessionTTL: sessionTTL,
		resetTTL:   resetTTL,
	}, nil
}

// Issue signs a token for the given user with the lifetime of the purpose.
func (i *TokenIssuer) Issue(userID int64, purpose TokenPurpose) (string, error) {
	ttl := i.sessionTTL
	if purpose == PurposeReset {
		ttl = i.resetTTL
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Purpose: purpose,
	})

	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry and returns the embedded claims.
// Expiry is reported as ErrTokenExpired only when the signature is good;
// every other failure collapses to ErrTokenInvalid.
func (i *TokenIssuer) Verify(tokenString string) (Claims, error) {
	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, ErrTokenInvalid
	}
	if !token.Valid {
		return Claims{}, ErrTokenInvalid
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return Claims{}, ErrTokenInvalid
	}
	if claims.Purpose != PurposeSession && claims.Purpose != PurposeReset {
		return Claims{}, ErrTokenInvalid
	}

	return Claims{UserID: userID, Purpose: claims.Purpose}, nil
}
