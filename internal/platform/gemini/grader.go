package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"text/template"

	"google.golang.org/genai"

	"github.com/avschaefer/cloudhire-ai-api/internal/config"
	"github.com/avschaefer/cloudhire-ai-api/internal/domain"
	"github.com/avschaefer/cloudhire-ai-api/internal/grading"
)

// promptTemplate builds the grading prompt for one answer. The model is
// instructed to answer in strict JSON matching gradeResponse.
const promptTemplate = `You are a strict grader. Rubric (JSON): {{.Rubric}}
Question identifier: {{.QuestionType}}:{{.QuestionID}}
Student answer:
{{.AnswerText}}

Return a JSON object with:
- "score": a float from 0 to 1
- "rationale": a short sentence explaining the score
`

// promptData holds the values substituted into the prompt template.
type promptData struct {
	Rubric       string
	QuestionType string
	QuestionID   int
	AnswerText   string
}

// gradeResponse is the JSON shape the model is asked to produce.
type gradeResponse struct {
	Score     float64 `json:"score"`
	Rationale string  `json:"rationale"`
}

// GeminiGrader implements the grading.Grader interface using Google's
// Gemini API to score submitted answers. Each call grades one answer;
// retry policy lives in the caller.
type GeminiGrader struct {
	logger   *slog.Logger
	client   *genai.Client
	model    string
	template *template.Template
}

// NewGeminiGrader creates a new GeminiGrader with the provided dependencies.
//
// Parameters:
//   - ctx: Context for the operation, which can be used for cancellation
//   - logger: A structured logger for operation logging
//   - cfg: LLM configuration containing the API key and model name
//
// Returns:
//   - A properly initialized GeminiGrader or an error if initialization fails
func NewGeminiGrader(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*GeminiGrader, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", grading.ErrInvalidConfig)
	}

	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", grading.ErrInvalidConfig)
	}

	tmpl, err := newPromptTemplate()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse prompt template: %v", grading.ErrInvalidConfig, err)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", grading.ErrInvalidConfig, err)
	}

	return &GeminiGrader{
		logger:   logger,
		client:   client,
		model:    cfg.ModelName,
		template: tmpl,
	}, nil
}

// GradeAnswer scores one answer with a single Gemini call. API failures are
// reported as grading.ErrTransient so the caller can retry; malformed or
// safety-blocked responses are permanent errors.
func (g *GeminiGrader) GradeAnswer(ctx context.Context, answer domain.AnswerSubmission, rubric map[string]any) (domain.GradeResult, error) {
	prompt, err := g.buildPrompt(answer, rubric)
	if err != nil {
		return domain.GradeResult{}, err
	}

	g.logger.DebugContext(ctx, "calling Gemini API",
		"model", g.model,
		"question_type", answer.QuestionType,
		"question_id", answer.QuestionID)

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](0.2),
		MaxOutputTokens:  200,
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return domain.GradeResult{}, fmt.Errorf("%w: %v", grading.ErrTransient, err)
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return domain.GradeResult{}, fmt.Errorf("%w: no content generated", grading.ErrInvalidResponse)
	}

	if resp.Candidates[0].FinishReason == genai.FinishReasonSafety {
		return domain.GradeResult{}, fmt.Errorf("%w: question %s:%d", grading.ErrContentBlocked,
			answer.QuestionType, answer.QuestionID)
	}

	var parsed gradeResponse
	if err := json.Unmarshal([]byte(resp.Text()), &parsed); err != nil {
		return domain.GradeResult{}, fmt.Errorf("%w: failed to parse JSON response: %v", grading.ErrInvalidResponse, err)
	}

	return domain.GradeResult{
		QuestionType: answer.QuestionType,
		QuestionID:   answer.QuestionID,
		Score:        clampScore(parsed.Score),
		Rationale:    parsed.Rationale,
	}, nil
}

func newPromptTemplate() (*template.Template, error) {
	return template.New("grade").Parse(promptTemplate)
}

// buildPrompt executes the prompt template for one answer.
func (g *GeminiGrader) buildPrompt(answer domain.AnswerSubmission, rubric map[string]any) (string, error) {
	rubricJSON := []byte("{}")
	if len(rubric) > 0 {
		var err error
		rubricJSON, err = json.Marshal(rubric)
		if err != nil {
			return "", fmt.Errorf("failed to marshal rubric: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := g.template.Execute(&buf, promptData{
		Rubric:       string(rubricJSON),
		QuestionType: answer.QuestionType,
		QuestionID:   answer.QuestionID,
		AnswerText:   answer.AnswerText,
	}); err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}

	return buf.String(), nil
}

// clampScore keeps model output inside the documented [0, 1] range.
func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
