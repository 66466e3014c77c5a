package text

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"time"
)

const (
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	geminiModel          = "gemini-2.5-flash"

	systemPrompt = "You are a text generation assistant for a typing speed website. " +
		"Your task is to generate exactly 200 words of plain, engaging, natural-sounding English text of similar length. " +
		"The content should resemble something a human might write: a mix of general observations, short narratives, trivia, or random thoughts. " +
		"Use proper grammar and a balance of simple and complex sentence structures. " +
		"Avoid difficult or rare words, technical terms, poetry, or code. " +
		"Do NOT use any markdown, formatting, or line breaks. Do NOT include lists, emojis, or headings."
)

// GeminiClient calls the Gemini generateContent API for a fresh passage.
type GeminiClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// generateContent request/response shapes, reduced to the fields we use.
type geminiRequest struct {
	SystemInstruction geminiContent    `json:"system_instruction"`
	Contents          []geminiContent  `json:"contents"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type generationConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens"`
	Temperature     float64 `json:"temperature"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// NewGeminiClient creates a client with the given API key. A non-positive
// timeout falls back to DefaultTimeout.
func NewGeminiClient(apiKey string, timeout time.Duration) *GeminiClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &GeminiClient{
		apiKey:  apiKey,
		baseURL: defaultGeminiBaseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// Passage requests one generated passage and returns it stripped of markup.
func (g *GeminiClient) Passage(ctx context.Context) (string, error) {
	if g.apiKey == "" {
		return "", ErrMissingAPIKey
	}

	// A fresh seed keeps the model from repeating itself across races.
	seed := rand.Intn(100000)
	reqBody := geminiRequest{
		SystemInstruction: geminiContent{
			Role:  "system",
			Parts: []geminiPart{{Text: systemPrompt}},
		},
		Contents: []geminiContent{{
			Role: "user",
			Parts: []geminiPart{{
				Text: fmt.Sprintf("Generate a random block of plain English text suitable for a typing test, make sure all words are in similar length. It must be exactly 200 words. Seed=%d", seed),
			}},
		}},
		GenerationConfig: generationConfig{
			MaxOutputTokens: 250,
			Temperature:     0.6,
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to encode generator request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, geminiModel)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build generator request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("generator request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("generator returned status %d", resp.StatusCode)
	}

	var decoded geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("failed to decode generator response: %w", err)
	}

	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyPassage
	}

	passage := StripMarkdown(decoded.Candidates[0].Content.Parts[0].Text)
	if passage == "" {
		return "", ErrEmptyPassage
	}
	return passage, nil
}
