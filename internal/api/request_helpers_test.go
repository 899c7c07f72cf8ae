package api

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

// testRequest sends method path with an optional JSON body and bearer
// token and returns the response.
func testRequest(t *testing.T, app *fiber.App, method string, path string, token string, payload any) *http.Response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		require.NoError(t, err, "encode payload")
		body = bytes.NewReader(encoded)
	}

	request := httptest.NewRequest(method, path, body)
	if payload != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}
	return sendTestRequest(t, app, request)
}

func uploadPhoto(t *testing.T, app *fiber.App, token string, photo []byte) *http.Response {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("photo", "meal.png")
	require.NoError(t, err, "create form file")
	_, err = part.Write(photo)
	require.NoError(t, err, "write form file")
	require.NoError(t, writer.Close(), "close multipart writer")

	request := httptest.NewRequest(http.MethodPost, "/api/drafts", &body)
	request.Header.Set("Content-Type", writer.FormDataContentType())
	request.Header.Set("Authorization", "Bearer "+token)
	return sendTestRequest(t, app, request)
}

func sendTestRequest(t *testing.T, app *fiber.App, request *http.Request) *http.Response {
	t.Helper()

	response, err := app.Test(request, -1)
	require.NoError(t, err, "%s %s", request.Method, request.URL.Path)
	t.Cleanup(func() {
		_ = response.Body.Close()
	})
	return response
}

func expectStatus(t *testing.T, response *http.Response, expected int) {
	t.Helper()
	if response.StatusCode != expected {
		body, _ := io.ReadAll(response.Body)
		require.Failf(t, "unexpected status", "expected status %d, got %d: %s", expected, response.StatusCode, body)
	}
}
