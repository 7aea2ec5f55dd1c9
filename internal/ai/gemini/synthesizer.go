package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	_ "embed"

	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spigell/cv-tailor/internal/ai"
	"github.com/spigell/cv-tailor/internal/utils"
)

type jsonGenerator interface {
	GenerateJSON(ctx context.Context, prompt string, schema *genai.Schema) (string, error)
	Model() string
}

//go:embed job_prompt.md
var jobPromptTemplate string

//go:embed summary_prompt.md
var summaryPromptTemplate string

const (
	defaultMaxRetries   = 3
	defaultMaxLogLength = 200

	retryBackoff = 2 * time.Second
)

// Synthesizer drives structured generation requests against Gemini. Responses
// are validated against a fixed schema; malformed output is retried with the
// validation error fed back into the next prompt.
type Synthesizer struct {
	generator  jsonGenerator
	maxRetries int
	maxLogLen  int
	logger     *zap.Logger
}

var _ ai.Synthesizer = (*Synthesizer)(nil)

func NewSynthesizer(generator jsonGenerator, maxRetries, maxLogLength int, logger *zap.Logger) *Synthesizer {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Synthesizer{
		generator:  generator,
		maxRetries: maxRetries,
		maxLogLen:  maxLogLength,
		logger:     logger,
	}
}

// JobContent issues one structured generation request for a single job entry.
func (s *Synthesizer) JobContent(ctx context.Context, req *ai.JobRequest) (*ai.JobContent, error) {
	jobJSON, err := json.MarshalIndent(req.Job, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal job payload: %w", err)
	}
	storiesJSON, err := json.MarshalIndent(req.Stories, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal stories payload: %w", err)
	}

	prompt := strings.ReplaceAll(jobPromptTemplate, "{{ADVERT_TEXT}}", req.AdvertText)
	prompt = strings.ReplaceAll(prompt, "{{JOB_JSON}}", string(jobJSON))
	prompt = strings.ReplaceAll(prompt, "{{STATEMENT}}", req.Statement)
	prompt = strings.ReplaceAll(prompt, "{{STORIES_JSON}}", string(storiesJSON))
	prompt = strings.ReplaceAll(prompt, "{{SKILLS}}", strings.Join(req.Skills, ", "))

	raw, attempts, lastValidation, err := s.generateValidated(ctx, prompt, jobContentSchema(), jobContentSchemaJSON, zap.Int("job_id", req.Job.ID))
	if err != nil {
		return nil, &ai.SynthesisError{
			Stage:          ai.StageJobContent,
			JobID:          req.Job.ID,
			Attempts:       attempts,
			LastValidation: lastValidation,
			Cause:          err,
		}
	}

	var payload struct {
		Description string   `json:"description"`
		Bullets     []string `json:"bullets"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("decode validated response: %w", err)
	}

	return &ai.JobContent{
		JobID:       req.Job.ID,
		Description: payload.Description,
		Bullets:     payload.Bullets,
	}, nil
}

// Summary synthesizes the single summary paragraph for the run.
func (s *Synthesizer) Summary(ctx context.Context, req *ai.SummaryRequest) (string, error) {
	prompt := strings.ReplaceAll(summaryPromptTemplate, "{{ADVERT_TEXT}}", req.AdvertText)
	prompt = strings.ReplaceAll(prompt, "{{SKILLS}}", strings.Join(req.Skills, ", "))

	raw, attempts, lastValidation, err := s.generateValidated(ctx, prompt, summarySchema(), summarySchemaJSON)
	if err != nil {
		return "", &ai.SynthesisError{
			Stage:          ai.StageSummary,
			Attempts:       attempts,
			LastValidation: lastValidation,
			Cause:          err,
		}
	}

	var payload struct {
		Summary string `json:"summary"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return "", fmt.Errorf("decode validated response: %w", err)
	}

	return payload.Summary, nil
}

// generateValidated runs the generate/validate/retry loop shared by both
// request kinds. It returns the first schema-conformant JSON document, the
// number of attempts spent, and the last validation message when the budget
// is exhausted.
func (s *Synthesizer) generateValidated(ctx context.Context, basePrompt string, schema *genai.Schema, schemaJSON string, fields ...zap.Field) (raw string, attempts int, lastValidation string, err error) {
	schemaLoader := gojsonschema.NewStringLoader(schemaJSON)
	prompt := strings.ReplaceAll(basePrompt, "{{FEEDBACK}}", "")

	var lastErr error

	for attempts = 1; attempts <= s.maxRetries; attempts++ {
		requestFields := append([]zap.Field{
			zap.Int("attempt", attempts),
			zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
			zap.String("prompt_preview", utils.TruncateForLog(prompt, s.maxLogLen)),
		}, fields...)
		s.logger.Debug("gemini generate content request", requestFields...)

		raw, lastErr = s.generator.GenerateJSON(ctx, prompt, schema)
		if lastErr != nil {
			if ctx.Err() != nil {
				return "", attempts, lastValidation, ctx.Err()
			}

			s.logger.Warn("gemini request failed", append([]zap.Field{
				zap.Int("attempt", attempts),
				zap.Error(lastErr),
			}, fields...)...)

			// No backoff after the final attempt; the failure
			// surfaces immediately.
			if attempts < s.maxRetries {
				if err := utils.WaitFor(ctx, retryBackoff); err != nil {
					return "", attempts, lastValidation, err
				}
			}
			continue
		}

		cleaned := extractJSON(raw)

		result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewStringLoader(cleaned))
		if err != nil {
			lastValidation = fmt.Sprintf("response is not valid JSON: %v", err)
		} else if !result.Valid() {
			messages := make([]string, 0, len(result.Errors()))
			for _, desc := range result.Errors() {
				messages = append(messages, desc.String())
			}
			lastValidation = strings.Join(messages, "; ")
		} else {
			return cleaned, attempts, "", nil
		}

		s.logger.Warn("gemini response failed schema validation", append([]zap.Field{
			zap.Int("attempt", attempts),
			zap.String("validation", lastValidation),
			zap.String("response_preview", utils.TruncateForLog(cleaned, s.maxLogLen)),
		}, fields...)...)

		// Feed the validation error back so the next attempt can correct it.
		feedback := fmt.Sprintf("\nYour previous reply was rejected: %s\nReturn a JSON object matching the required schema exactly.", lastValidation)
		prompt = strings.ReplaceAll(basePrompt, "{{FEEDBACK}}", feedback)
	}

	attempts = s.maxRetries

	if lastValidation != "" {
		return "", attempts, lastValidation, fmt.Errorf("schema validation exhausted after %d attempts: %s", attempts, lastValidation)
	}
	return "", attempts, lastValidation, lastErr
}

// extractJSON strips markdown code fences some models wrap around JSON output.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}
