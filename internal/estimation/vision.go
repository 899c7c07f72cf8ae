package estimation

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/terraincognita07/mealsnap/internal/models"
	"github.com/terraincognita07/mealsnap/internal/nutrition"
)

const (
	defaultVisionModel   = "gpt-4.1-mini"
	defaultVisionBaseURL = "https://api.openai.com/v1"
	defaultVisionTimeout = 60 * time.Second
	maxDetectedItems     = 20
)

// VisionConfig configures an OpenAI compatible chat completions backend
// that accepts image input.
type VisionConfig struct {
	APIKey     string
	Model      string
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// VisionClient estimates meal nutrition by asking a vision model to list
// the foods on the photo.
type VisionClient struct {
	apiKey     string
	model      string
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
}

func NewVisionClient(cfg VisionConfig) (*VisionClient, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("estimation: api key must not be empty")
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultVisionModel
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultVisionBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultVisionTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &VisionClient{
		apiKey:     apiKey,
		model:      model,
		baseURL:    strings.TrimRight(baseURL, "/"),
		timeout:    timeout,
		httpClient: httpClient,
	}, nil
}

func (c *VisionClient) Analyze(ctx context.Context, photo Photo) (models.DetectionResult, error) {
	if len(photo.Data) == 0 {
		return models.DetectionResult{}, fmt.Errorf("%w: empty photo", ErrAnalysisFailed)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	content, err := c.chatCompletion(ctx, photo)
	if err != nil {
		return models.DetectionResult{}, fmt.Errorf("%w: %w", ErrAnalysisFailed, err)
	}

	result, err := parseDetection(content)
	if err != nil {
		return models.DetectionResult{}, fmt.Errorf("%w: %w", ErrAnalysisFailed, err)
	}
	return result, nil
}

func (c *VisionClient) chatCompletion(ctx context.Context, photo Photo) (string, error) {
	contentType := strings.TrimSpace(photo.ContentType)
	if contentType == "" {
		contentType = "image/jpeg"
	}
	dataURL := "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(photo.Data)

	payload := map[string]any{
		"model":           c.model,
		"temperature":     0,
		"response_format": map[string]string{"type": "json_object"},
		"messages": []map[string]any{
			{
				"role":    "system",
				"content": visionSystemPrompt,
			},
			{
				"role": "user",
				"content": []map[string]any{
					{"type": "text", "text": "List the foods on this plate."},
					{"type": "image_url", "image_url": map[string]string{"url": dataURL}},
				},
			},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call vision model: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("vision model returned status %s", resp.Status)
	}

	var responseData struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&responseData); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(responseData.Choices) == 0 {
		return "", errors.New("vision model returned no choices")
	}

	content := strings.TrimSpace(responseData.Choices[0].Message.Content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.Trim(content, "`")
	return strings.TrimSpace(content), nil
}

const visionSystemPrompt = `You estimate the nutrition of meal photos. Respond with raw JSON only:
{"items":[{"name":string,"grams":number,"kcal":number,"protein":number,"carbs":number,"fat":number,"confidence":number between 0 and 1}]}
Use grams for protein, carbs and fat. Return an empty items list when no food is visible.`

type visionItem struct {
	Name       string `json:"name"`
	Grams      any    `json:"grams"`
	Kcal       any    `json:"kcal"`
	Protein    any    `json:"protein"`
	Carbs      any    `json:"carbs"`
	Fat        any    `json:"fat"`
	Confidence any    `json:"confidence"`
}

// parseDetection turns the model answer into a normalized detection.
// Numbers may arrive as JSON numbers or numeric strings; anything else
// becomes 0.
func parseDetection(content string) (models.DetectionResult, error) {
	var parsed struct {
		Items []visionItem `json:"items"`
	}
	decoder := json.NewDecoder(strings.NewReader(content))
	decoder.UseNumber()
	if err := decoder.Decode(&parsed); err != nil {
		return models.DetectionResult{}, fmt.Errorf("parse model answer: %w", err)
	}

	items := make([]models.FoodItem, 0, len(parsed.Items))
	for _, raw := range parsed.Items {
		name := strings.TrimSpace(raw.Name)
		if name == "" {
			continue
		}
		item := models.FoodItem{
			Name:    name,
			Grams:   numeric(raw.Grams),
			Kcal:    numeric(raw.Kcal),
			Protein: numeric(raw.Protein),
			Carbs:   numeric(raw.Carbs),
			Fat:     numeric(raw.Fat),
		}
		if raw.Confidence != nil {
			confidence := numeric(raw.Confidence)
			item.Confidence = &confidence
		}
		items = append(items, item)
		if len(items) == maxDetectedItems {
			break
		}
	}

	return nutrition.Normalize(models.DetectionResult{Items: items}), nil
}

func numeric(value any) float64 {
	switch v := value.(type) {
	case json.Number:
		parsed, err := strconv.ParseFloat(v.String(), 64)
		if err != nil {
			return 0
		}
		return parsed
	case string:
		return nutrition.ParseAmount(v)
	default:
		return 0
	}
}
