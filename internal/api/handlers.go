package api

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/terraincognita07/mealsnap/internal/services"
)

type Handler struct {
	secretKey    []byte
	cookieSecure bool
	cookies      *cookieSealer
	loginLimiter *attemptLimiter
	logger       *slog.Logger
	now          func() time.Time

	authService   *services.AuthService
	mealService   *services.MealService
	reportService *services.ReportService
}

// Options carries the HTTP-layer settings that are not services.
type Options struct {
	SecretKey    string
	CookieSecure bool
	Logger       *slog.Logger
}

func NewHandler(deps Dependencies, opts Options) (*Handler, error) {
	if deps.Auth == nil || deps.Meals == nil || deps.Reports == nil {
		return nil, errors.New("auth, meal and report services are required")
	}
	if opts.SecretKey == "" {
		return nil, errors.New("secret key is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	sealer, err := newCookieSealer([]byte(opts.SecretKey), sessionCookiePurpose)
	if err != nil {
		return nil, fmt.Errorf("init cookie sealer: %w", err)
	}

	return &Handler{
		secretKey:     []byte(opts.SecretKey),
		cookieSecure:  opts.CookieSecure,
		cookies:       sealer,
		loginLimiter:  newAttemptLimiter(loginAttemptsLimit, loginAttemptsWindow),
		logger:        opts.Logger,
		now:           time.Now,
		authService:   deps.Auth,
		mealService:   deps.Meals,
		reportService: deps.Reports,
	}, nil
}
