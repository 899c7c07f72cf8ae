package estimation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatResponse(content string) string {
	payload, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"content": content}},
		},
	})
	return string(payload)
}

func newVisionTestClient(t *testing.T, handler http.HandlerFunc) *VisionClient {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewVisionClient(VisionConfig{
		APIKey:     "test-key",
		BaseURL:    server.URL + "/v1/",
		Timeout:    2 * time.Second,
		HTTPClient: server.Client(),
	})
	require.NoError(t, err)
	return client
}

func TestVisionClientAnalyzeParsesItems(t *testing.T) {
	t.Parallel()

	var captured map[string]any
	client := newVisionTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(chatResponse("```json\n" + `{"items":[
			{"name":"Rice","grams":150,"kcal":"195","protein":4.04,"carbs":42,"fat":0.4,"confidence":0.85},
			{"name":"  ","grams":1,"kcal":1},
			{"name":"Sauce","grams":-3,"kcal":"lots","protein":0,"carbs":2,"fat":1,"confidence":4}
		]}` + "\n```")))
	})

	result, err := client.Analyze(context.Background(), Photo{ContentType: "image/png", Data: []byte{0x89, 'P', 'N', 'G'}})
	require.NoError(t, err)

	assert.Equal(t, defaultVisionModel, captured["model"])
	assert.Contains(t, mustJSON(t, captured["messages"]), "data:image/png;base64,")

	require.Len(t, result.Items, 2)
	assert.Equal(t, "Rice", result.Items[0].Name)
	assert.Equal(t, 195.0, result.Items[0].Kcal)
	assert.Equal(t, 4.0, result.Items[0].Protein)
	assert.Equal(t, 0.85, *result.Items[0].Confidence)
	assert.Equal(t, 0.0, result.Items[1].Grams)
	assert.Equal(t, 0.0, result.Items[1].Kcal)
	assert.Equal(t, 1.0, *result.Items[1].Confidence)
	assert.Equal(t, 195.0, result.Total.Kcal)
	assert.Equal(t, 44.0, result.Total.Carbs)
}

func TestVisionClientAnalyzeFailures(t *testing.T) {
	t.Parallel()

	cases := map[string]http.HandlerFunc{
		"status": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		},
		"no choices": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"choices":[]}`))
		},
		"not json": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(chatResponse("I see an apple")))
		},
	}
	for name, handler := range cases {
		client := newVisionTestClient(t, handler)
		_, err := client.Analyze(context.Background(), Photo{Data: []byte("jpeg")})
		assert.ErrorIs(t, err, ErrAnalysisFailed, name)
	}
}

func TestVisionClientAnalyzeRejectsEmptyPhoto(t *testing.T) {
	t.Parallel()

	client := newVisionTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		assert.Fail(t, "no request expected for an empty photo")
	})
	_, err := client.Analyze(context.Background(), Photo{})
	assert.ErrorIs(t, err, ErrAnalysisFailed)
}

func TestVisionClientAnalyzeTimesOut(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	t.Cleanup(server.Close)
	t.Cleanup(func() { close(release) })

	client, err := NewVisionClient(VisionConfig{APIKey: "k", BaseURL: server.URL, Timeout: 50 * time.Millisecond})
	require.NoError(t, err)

	_, err = client.Analyze(context.Background(), Photo{Data: []byte("jpeg")})
	assert.ErrorIs(t, err, ErrAnalysisFailed)
}

func TestNewVisionClientRequiresAPIKey(t *testing.T) {
	t.Parallel()

	_, err := NewVisionClient(VisionConfig{APIKey: "  "})
	assert.Error(t, err)
}

func mustJSON(t *testing.T, value any) string {
	t.Helper()

	encoded, err := json.Marshal(value)
	require.NoError(t, err)
	return strings.TrimSpace(string(encoded))
}
