package services

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "session"

const sessionTTL = 7 * 24 * time.Hour

// SessionService signs and verifies the opaque session token. The token
// carries only the user's fid.
type SessionService struct {
	secret []byte
	ttl    time.Duration
}

// NewSessionService reads SESSION_SECRET from the environment.
func NewSessionService() *SessionService {
	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		log.Fatal("SESSION_SECRET environment variable not set")
	}
	return NewSessionServiceWithSecret(secret)
}

func NewSessionServiceWithSecret(secret string) *SessionService {
	return &SessionService{secret: []byte(secret), ttl: sessionTTL}
}

type sessionClaims struct {
	FID int64 `json:"fid"`
	jwt.RegisteredClaims
}

// Issue creates a signed session token for the given fid.
func (s *SessionService) Issue(fid int64) (string, time.Time, error) {
	now := time.Now()
	expires := now.Add(s.ttl)
	claims := sessionClaims{
		FID: fid,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expires, nil
}

// Verify parses a session token and returns the fid it carries.
func (s *SessionService) Verify(token string) (int64, error) {
	parsed, err := jwt.ParseWithClaims(token, &sessionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return 0, err
	}
	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok || !parsed.Valid {
		return 0, fmt.Errorf("invalid session token")
	}
	return claims.FID, nil
}

// Cookie builds the httpOnly session cookie for a signed token.
func (s *SessionService) Cookie(token string, expires time.Time) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Expires:  expires,
		HTTPOnly: true,
		SameSite: "Lax",
		Path:     "/",
	}
}

// ClearCookie builds an expired cookie that removes the session.
func (s *SessionService) ClearCookie() *fiber.Cookie {
	return &fiber.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		SameSite: "Lax",
		Path:     "/",
	}
}
