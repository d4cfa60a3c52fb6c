// Package genai implements the quiz generator on top of the Gemini
// generateContent HTTP API.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/fx"

	"snaplearn/config"
	"snaplearn/internal/domain/entity"
	"snaplearn/internal/domain/service"
)

const defaultTimeout = 30 * time.Second

// Params defines the dependencies for the Gemini service.
type Params struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

type geminiService struct {
	endpoint string
	apiKey   string
	client   *http.Client
	logger   *slog.Logger
}

// NewGeminiService is the constructor for geminiService.
func NewGeminiService(params Params) (service.QuizGenerator, error) {
	cfg := params.Config.Gemini
	if cfg == nil || cfg.Endpoint == "" {
		return nil, errors.New("gemini endpoint must be configured")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &geminiService{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		client:   &http.Client{Timeout: timeout},
		logger:   params.Logger,
	}, nil
}

// generateRequest is the subset of the generateContent request body we use.
// The response MIME type forces the model to answer with bare JSON instead of
// a markdown-fenced block.
type generateRequest struct {
	Contents []content `json:"contents"`
	Config   struct {
		ResponseMIMEType string `json:"responseMimeType"`
	} `json:"generationConfig"`
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
}

// GenerateQuestions produces multiple-choice questions for a topic. Questions
// that fail schema validation are dropped rather than failing the batch; an
// empty result after filtering is an error.
func (s *geminiService) GenerateQuestions(ctx context.Context, topic, difficulty, language string, count int) ([]entity.QuizQuestion, error) {
	prompt := fmt.Sprintf(
		"Generate %d multiple-choice quiz questions about %q at %s difficulty, in %s. "+
			"Respond with a JSON array where each element has the fields "+
			"\"question\", \"options\" (exactly 4 strings), \"correctAnswer\" "+
			"(must be one of the options, verbatim), \"explanation\" and \"points\" (integer, 10).",
		count, topic, difficulty, language,
	)

	raw, err := s.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var questions []entity.QuizQuestion
	if err := json.Unmarshal(raw, &questions); err != nil {
		return nil, errors.Wrap(err, "decode generated questions")
	}

	valid := make([]entity.QuizQuestion, 0, len(questions))
	for _, q := range questions {
		if !validQuestion(q) {
			s.logger.WarnContext(ctx, "dropping malformed generated question",
				slog.String("question", q.Question))

			continue
		}
		if q.Points <= 0 {
			q.Points = entity.DefaultQuestionPoints
		}
		valid = append(valid, q)
	}

	if len(valid) == 0 {
		return nil, errors.New("no usable questions in model response")
	}

	return valid, nil
}

// GenerateFacts produces a short summary and fact list for a topic.
func (s *geminiService) GenerateFacts(ctx context.Context, topic, difficulty, language string) (*service.Facts, error) {
	prompt := fmt.Sprintf(
		"Give a short summary and 5 fun facts about %q at %s difficulty, in %s. "+
			"Respond with a JSON object with the fields \"summary\" (string) and \"facts\" (array of strings).",
		topic, difficulty, language,
	)

	raw, err := s.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	facts := new(service.Facts)
	if err := json.Unmarshal(raw, facts); err != nil {
		return nil, errors.Wrap(err, "decode generated facts")
	}
	if facts.Summary == "" && len(facts.Facts) == 0 {
		return nil, errors.New("empty facts in model response")
	}
	facts.Language = language

	return facts, nil
}

// generate performs one generateContent call and returns the model's text
// payload with any markdown code fences stripped.
func (s *geminiService) generate(ctx context.Context, prompt string) ([]byte, error) {
	reqBody := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	}
	reqBody.Config.ResponseMIMEType = "application/json"

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, errors.Wrap(err, "encode generate request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrap(err, "build generate request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "call gemini")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read gemini response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("gemini returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var decoded generateResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, errors.Wrap(err, "decode gemini response")
	}
	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return nil, errors.New("gemini response has no candidates")
	}

	return []byte(stripCodeFence(decoded.Candidates[0].Content.Parts[0].Text)), nil
}

// validQuestion keeps only questions a client can actually render and score:
// a prompt, at least two options, and a correct answer present among them.
func validQuestion(q entity.QuizQuestion) bool {
	if strings.TrimSpace(q.Question) == "" || len(q.Options) < 2 {
		return false
	}
	for _, option := range q.Options {
		if option == q.CorrectAnswer {
			return true
		}
	}

	return false
}

// stripCodeFence unwraps ```json ... ``` blocks that some model versions emit
// despite the JSON response MIME type.
func stripCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")

	return strings.TrimSpace(trimmed)
}
