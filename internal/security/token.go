package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// PortalClaims carry the single reservation a portal link may read.
type PortalClaims struct {
	ReservationRef string `json:"reservation_ref"`
	jwt.RegisteredClaims
}

// TokenManager mints and checks the signed links handed to customers for
// the read-only reservation portal. One token grants access to exactly one
// reservation snapshot.
type TokenManager interface {
	GeneratePortalToken(reservationRef string) (string, error)
	ValidateToken(tokenString string) (*PortalClaims, error)
}

type tokenManager struct {
	secret []byte
	expiry time.Duration
}

func NewTokenManager(secret string, expiry time.Duration) TokenManager {
	return &tokenManager{
		secret: []byte(secret),
		expiry: expiry,
	}
}

func (m *tokenManager) GeneratePortalToken(reservationRef string) (string, error) {
	claims := PortalClaims{
		ReservationRef: reservationRef,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   reservationRef,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.expiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "reservation-engine",
			Audience:  jwt.ClaimStrings{"customer-portal"},
			ID:        uuid.NewString(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *tokenManager) ValidateToken(tokenString string) (*PortalClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &PortalClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*PortalClaims); ok && token.Valid {
		if claims.ReservationRef == "" {
			claims.ReservationRef = claims.Subject
		}
		return claims, nil
	}

	return nil, ErrInvalidToken
}
