package vision

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"

	"menureader/internal/request"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Client talks to the Gemini generateContent endpoint through the
// resilient request layer.
type Client struct {
	rc      *request.Client
	apiKey  string
	model   string
	baseURL string
}

func NewClient(rc *request.Client, apiKey, model, baseURL string) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("missing vision API key")
	}
	if model == "" {
		return nil, errors.New("missing vision model name")
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{rc: rc, apiKey: apiKey, model: model, baseURL: baseURL}, nil
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
	SafetySettings   []safetySetting  `json:"safetySettings"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type safetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

var defaultSafetySettings = []safetySetting{
	{Category: "HARM_CATEGORY_HARASSMENT", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
	{Category: "HARM_CATEGORY_HATE_SPEECH", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
	{Category: "HARM_CATEGORY_SEXUALLY_EXPLICIT", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
	{Category: "HARM_CATEGORY_DANGEROUS_CONTENT", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason  string `json:"finishReason"`
		SafetyRatings []struct {
			Category    string `json:"category"`
			Probability string `json:"probability"`
		} `json:"safetyRatings"`
	} `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

// Describe sends the photo plus a language-specific prompt and returns the
// model's raw text. Safety blocks surface as a ContentBlocked APIError,
// never as a parse failure.
func (c *Client) Describe(ctx context.Context, imageData []byte, mimeType, targetLang string) (string, error) {
	if len(imageData) == 0 {
		return "", errors.New("empty image data")
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	payload := generateRequest{
		Contents: []content{{
			Parts: []part{
				{Text: BuildMenuPrompt(targetLang)},
				{InlineData: &inlineData{
					MimeType: mimeType,
					Data:     base64.StdEncoding.EncodeToString(imageData),
				}},
			},
		}},
		GenerationConfig: generationConfig{
			Temperature:     0.2,
			MaxOutputTokens: 4096,
		},
		SafetySettings: defaultSafetySettings,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal vision request: %w", err)
	}

	var resp generateResponse
	err = c.rc.Do(ctx, request.Request{
		Method: "POST",
		URL:    fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model),
		Query:  url.Values{"key": {c.apiKey}},
		Body:   body,
	}, &resp)
	if err != nil {
		return "", err
	}

	if resp.PromptFeedback.BlockReason != "" {
		return "", request.NewContentBlocked(resp.PromptFeedback.BlockReason)
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("empty vision model response")
	}

	cand := resp.Candidates[0]
	if cand.FinishReason == "SAFETY" {
		return "", request.NewContentBlocked("finish_reason=SAFETY")
	}
	for _, r := range cand.SafetyRatings {
		if r.Probability == "HIGH" || r.Probability == "MEDIUM" {
			return "", request.NewContentBlocked(strings.ToLower(r.Category))
		}
	}

	text := cand.Content.Parts[0].Text
	log.Printf("VISION_DONE model=%s text_length=%d finish=%s", c.model, len(text), cand.FinishReason)

	return text, nil
}
