package keywords

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	fhttp "github.com/bogdanfinn/fhttp"
	"github.com/jimezsa/leadscout/internal/network"
)

const (
	DefaultModel    = "gemini-2.5-flash"
	DefaultEndpoint = "https://generativelanguage.googleapis.com/v1beta/models"
)

// Gemini calls the generateContent REST endpoint.
type Gemini struct {
	client   network.Doer
	apiKey   string
	model    string
	endpoint string
}

func NewGemini(client network.Doer, apiKey, model string) *Gemini {
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	return &Gemini{
		client:   client,
		apiKey:   strings.TrimSpace(apiKey),
		model:    model,
		endpoint: DefaultEndpoint,
	}
}

// WithEndpoint points the client at another API root.
func (g *Gemini) WithEndpoint(endpoint string) *Gemini {
	g.endpoint = strings.TrimRight(endpoint, "/")
	return g
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	if g == nil || g.client == nil || g.apiKey == "" {
		return "", ErrServiceUnavailable
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", err
	}

	target := fmt.Sprintf("%s/%s:generateContent", g.endpoint, g.model)
	req, err := fhttp.NewRequestWithContext(ctx, fhttp.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("content-type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("gemini: read body: %w", err)
	}
	return parseGenerateResponse(resp.StatusCode, raw)
}

func parseGenerateResponse(status int, raw []byte) (string, error) {
	var decoded generateResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		if status >= 400 {
			return "", fmt.Errorf("gemini: http %d", status)
		}
		return "", fmt.Errorf("gemini: decode: %w", err)
	}
	if decoded.Error != nil {
		return "", fmt.Errorf("gemini: http %d: %s", decoded.Error.Code, decoded.Error.Message)
	}
	if status >= 400 {
		return "", fmt.Errorf("gemini: http %d", status)
	}
	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return "", nil
	}
	return strings.TrimSpace(decoded.Candidates[0].Content.Parts[0].Text), nil
}
