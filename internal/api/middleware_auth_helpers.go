package api

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/terraincognita07/mealsnap/internal/session"
)

type authClaims struct {
	UserID uint   `json:"uid"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// requestToken prefers an Authorization bearer token and falls back to the
// sealed auth cookie.
func (handler *Handler) requestToken(c *fiber.Ctx) (string, error) {
	header := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if scheme, token, found := strings.Cut(header, " "); found && strings.EqualFold(scheme, "Bearer") {
		if token = strings.TrimSpace(token); token != "" {
			return token, nil
		}
	}

	rawCookie := strings.TrimSpace(c.Cookies(authCookieName))
	if rawCookie == "" {
		return "", errors.New("missing credentials")
	}
	plaintext, err := handler.cookies.open(sessionCookiePurpose, rawCookie)
	if err != nil {
		return "", errors.New("invalid auth cookie")
	}
	return string(plaintext), nil
}

func (handler *Handler) authenticateRequest(c *fiber.Ctx) (session.Session, error) {
	tokenValue, err := handler.requestToken(c)
	if err != nil {
		return session.Session{}, err
	}

	claims := &authClaims{}
	token, err := jwt.ParseWithClaims(tokenValue, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return handler.secretKey, nil
	}, jwt.WithTimeFunc(handler.now))
	if err != nil || !token.Valid {
		return session.Session{}, errors.New("invalid token")
	}
	if claims.ExpiresAt == nil {
		return session.Session{}, errors.New("token without expiry")
	}

	user, err := handler.authService.FindByID(claims.UserID)
	if err != nil {
		return session.Session{}, err
	}

	sess := session.Session{UserID: user.ID, Email: user.Email, ExpiresAt: claims.ExpiresAt.Time}
	if !sess.Valid(handler.now()) {
		return session.Session{}, errors.New("token expired")
	}
	return sess, nil
}
