// Package gemini implements integration with Google's Gemini AI API.
// It writes fresh jokes for the result template's {joke} placeholder.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/edgard/percentbot/internal/config"
)

// maxJokeLength bounds a single generated joke in runes.
const maxJokeLength = 200

// Client defines the AI operations used by the bot.
type Client interface {
	// GenerateJokes returns up to count non-empty jokes.
	GenerateJokes(ctx context.Context, count int) ([]string, error)
}

type sdkClient struct {
	genaiClient      *genai.Client
	log              *slog.Logger
	contentConfig    *genai.GenerateContentConfig
	defaultModelName string
	maxRetries       int
	retryDelay       time.Duration
}

var jokeListSchema = &genai.Schema{
	Type:        genai.TypeArray,
	Description: "A list of short jokes.",
	Items:       &genai.Schema{Type: genai.TypeString},
}

// NewClient creates a new Gemini client with the provided configuration.
func NewClient(ctx context.Context, cfg config.GeminiConfig, log *slog.Logger) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	gi, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	instruction := cfg.SystemInstruction
	if instruction == "" {
		instruction = JokeWriterSystemInstruction
	}

	temperature := cfg.Temperature
	baseCfg := &genai.GenerateContentConfig{
		Temperature:       &temperature,
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: instruction}}},
		ResponseMIMEType:  "application/json",
		ResponseSchema:    jokeListSchema,
		SafetySettings: []*genai.SafetySetting{
			{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
			{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
			{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
			{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
		},
	}

	logger := log.With("component", "gemini_client")
	logger.Info("Gemini client initialized successfully", "model", cfg.ModelName)
	return &sdkClient{
		genaiClient:      gi,
		log:              logger,
		contentConfig:    baseCfg,
		defaultModelName: cfg.ModelName,
		maxRetries:       cfg.MaxRetries,
		retryDelay:       time.Duration(cfg.RetryDelaySeconds) * time.Second,
	}, nil
}

// GenerateJokes asks the model for count jokes in JSON schema mode.
func (c *sdkClient) GenerateJokes(ctx context.Context, count int) ([]string, error) {
	if count <= 0 {
		return nil, fmt.Errorf("joke count must be positive, got %d", count)
	}

	c.log.DebugContext(ctx, "Generating jokes", "count", count)
	contents := []*genai.Content{genai.NewContentFromText(fmt.Sprintf(JokeRequestPrompt, count), genai.RoleUser)}

	resp, err := c.generateContentWithRetries(ctx, c.defaultModelName, contents, c.contentConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to generate jokes: %w", err)
	}

	jsonText, err := c.extractTextFromResponse(ctx, resp)
	if err != nil {
		return nil, err
	}

	jokes, err := ParseJokes(jsonText, count)
	if err != nil {
		c.log.ErrorContext(ctx, "Failed to parse jokes JSON from Gemini response", "error", err, "response_text", jsonText)
		return nil, err
	}

	c.log.InfoContext(ctx, "Generated jokes", "requested", count, "received", len(jokes))
	return jokes, nil
}

// ParseJokes decodes a JSON array of strings, sanitizes each entry, drops
// blank, duplicate and over-long ones and caps the result at limit.
func ParseJokes(jsonText string, limit int) ([]string, error) {
	var raw []string
	if err := json.Unmarshal([]byte(strings.TrimSpace(jsonText)), &raw); err != nil {
		return nil, fmt.Errorf("invalid jokes JSON array received: %w", err)
	}

	jokes := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, j := range raw {
		j = sanitizeJoke(j)
		if j == "" || len([]rune(j)) > maxJokeLength {
			continue
		}
		if _, dup := seen[j]; dup {
			continue
		}
		seen[j] = struct{}{}
		jokes = append(jokes, j)
		if limit > 0 && len(jokes) == limit {
			break
		}
	}

	if len(jokes) == 0 {
		return nil, errors.New("response contained no usable jokes")
	}
	return jokes, nil
}

func (c *sdkClient) generateContentWithRetries(ctx context.Context, modelName string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	var err error
	for i := 0; i <= c.maxRetries; i++ {
		var resp *genai.GenerateContentResponse
		resp, err = c.genaiClient.Models.GenerateContent(ctx, modelName, contents, cfg)
		if err == nil {
			return resp, nil
		}

		c.log.WarnContext(ctx, "Gemini API call failed, checking for retry", "attempt", i+1, "max_retries", c.maxRetries, "error", err)

		code, ok := apiErrorCode(err)
		if !ok || (code != 500 && code != 503) {
			c.log.ErrorContext(ctx, "Gemini API call failed with non-retriable error", "error", err)
			return nil, fmt.Errorf("gemini API call failed: %w", err)
		}
		if i == c.maxRetries {
			break
		}

		c.log.InfoContext(ctx, "Retrying Gemini API call due to retriable APIError", "delay", c.retryDelay, "code", code)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.retryDelay):
		}
	}

	return nil, fmt.Errorf("gemini API call failed after %d retries: %w", c.maxRetries, err)
}

// apiErrorCode returns the HTTP status carried by a *genai.APIError.
func apiErrorCode(err error) (int, bool) {
	var apiErr *genai.APIError
	if errors.As(err, &apiErr) && apiErr != nil {
		return apiErr.Code, true
	}
	return 0, false
}

func (c *sdkClient) extractTextFromResponse(ctx context.Context, resp *genai.GenerateContentResponse) (string, error) {
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockedReasonUnspecified {
		reasonMsg := fmt.Sprintf("%v", resp.PromptFeedback.BlockReason)
		if resp.PromptFeedback.BlockReasonMessage != "" {
			reasonMsg = resp.PromptFeedback.BlockReasonMessage
		}
		c.log.ErrorContext(ctx, "Gemini request blocked", "reason", reasonMsg)
		return "", fmt.Errorf("joke generation blocked by safety filter: %s", reasonMsg)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		finishReason := "unknown"
		if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason != genai.FinishReasonUnspecified {
			finishReason = fmt.Sprintf("%v", resp.Candidates[0].FinishReason)
		}
		c.log.WarnContext(ctx, "Gemini response missing candidates or content", "finish_reason", finishReason)
		return "", fmt.Errorf("joke generation returned no content, finish reason: %s", finishReason)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", errors.New("joke generation returned empty text")
	}
	return text, nil
}
