package api

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"github.com/terraincognita07/mealsnap/internal/blob"
	"github.com/terraincognita07/mealsnap/internal/db"
	"github.com/terraincognita07/mealsnap/internal/estimation"
	"github.com/terraincognita07/mealsnap/internal/session"
)

const testSecretKey = "test-secret-key-with-at-least-32-chars"

var testPNG = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)

type testApp struct {
	app     *fiber.App
	handler *Handler
	tracker *session.Tracker
}

func newTestApp(t *testing.T) testApp {
	t.Helper()
	return newTestAppWithEstimator(t, estimation.NewStubEstimator(0))
}

func newTestAppWithEstimator(t *testing.T, estimator estimation.Estimator) testApp {
	t.Helper()

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "mealsnap-api-test.db"))
	require.NoError(t, err, "open sqlite")
	sqlDB, err := database.DB()
	require.NoError(t, err, "open sql db")
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	photos, err := blob.NewLocalStore(filepath.Join(t.TempDir(), "photos"))
	require.NoError(t, err, "init photo store")

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tracker := session.NewTracker()
	deps := NewDependencies(database, DependencyConfig{
		Photos:          photos,
		Estimator:       estimator,
		Tracker:         tracker,
		Location:        time.UTC,
		MaxPhotoBytes:   1 << 20,
		HistoryPageSize: 10,
		Logger:          logger,
	})
	handler, err := NewHandler(deps, Options{SecretKey: testSecretKey, Logger: logger})
	require.NoError(t, err, "init handler")

	app := fiber.New()
	RegisterRoutes(app, handler)
	app.Use(handler.NotFound)
	return testApp{app: app, handler: handler, tracker: tracker}
}

// registerTestUser creates an account and returns its bearer token.
func registerTestUser(t *testing.T, app *fiber.App, email string) string {
	t.Helper()

	response := testRequest(t, app, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    email,
		"password": "StrongPass1",
	})
	expectStatus(t, response, fiber.StatusCreated)

	payload := struct {
		Token string `json:"token"`
	}{}
	decodeJSONBody(t, response.Body, &payload)
	require.NotEmpty(t, payload.Token, "register response carries a token")
	return payload.Token
}
