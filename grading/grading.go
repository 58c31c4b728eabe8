package grading

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	// MinDamage is the floor for throwaway submissions and the value every
	// failure path bottoms out at.
	MinDamage = 10
	maxDamage = 400
)

// Grader converts a completed raid round into boss damage by asking an
// OpenAI-compatible chat completions endpoint to band the response. The model
// is an untrusted collaborator: every failure path (timeout, transport error,
// bad JSON, out-of-range value) falls back to a deterministic length
// heuristic so a raid never stalls on grading.
type Grader struct {
	httpClient *http.Client
	apiKey     string
	apiURL     string
	model      string
	log        zerolog.Logger
}

func NewGrader(apiKey, apiURL, model string, timeout time.Duration, log zerolog.Logger) *Grader {
	return &Grader{
		httpClient: &http.Client{Timeout: timeout},
		apiKey:     apiKey,
		apiURL:     strings.TrimSuffix(apiURL, "/"),
		model:      model,
		log:        log,
	}
}

const systemPrompt = `You are an IELTS speaking examiner scoring a collaborative three-part answer written by a clan of learners. Judge vocabulary range, grammatical accuracy and coherence across the parts.

Respond with ONLY valid JSON (no markdown, no code fences, no explanations):
{"damage": N}

Rules:
- N is an integer between 10 and 400.
- Richer vocabulary, accurate grammar and well-linked ideas deserve more damage.
- Very short, empty or incoherent answers deserve the minimum.`

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

type damageVerdict struct {
	Damage int `json:"damage"`
}

// Score grades the concatenated round text. It never returns an error.
func (g *Grader) Score(ctx context.Context, roundText string) int {
	if g.apiKey == "" {
		return heuristicDamage(roundText)
	}

	damage, err := g.requestDamage(ctx, roundText)
	if err != nil {
		g.log.Warn().Err(err).Msg("grading failed, using fallback damage")
		return heuristicDamage(roundText)
	}
	return damage
}

func (g *Grader) requestDamage(ctx context.Context, roundText string) (int, error) {
	reqBody := chatRequest{
		Model: g.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: roundText},
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.apiURL+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return 0, fmt.Errorf("failed to parse API response: %w", err)
	}
	if chatResp.Error != nil {
		return 0, fmt.Errorf("API error: %s", chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return 0, fmt.Errorf("empty response from model")
	}

	content := cleanJSONContent(chatResp.Choices[0].Message.Content)

	var verdict damageVerdict
	if err := json.Unmarshal([]byte(content), &verdict); err != nil {
		return 0, fmt.Errorf("model returned invalid JSON: %w", err)
	}
	if verdict.Damage < MinDamage || verdict.Damage > maxDamage {
		return 0, fmt.Errorf("damage %d out of range", verdict.Damage)
	}
	return verdict.Damage, nil
}

func cleanJSONContent(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}

// heuristicDamage mirrors the pre-AI scoring rule: longer answers hit harder,
// with a floor for throwaway submissions.
func heuristicDamage(text string) int {
	if len(text) < 10 {
		return MinDamage
	}
	return len(text) * 2
}
