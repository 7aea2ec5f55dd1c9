package gemini

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/spigell/cv-tailor/internal/ai"
	"github.com/spigell/cv-tailor/internal/career"
)

// stubGenerator replays canned responses and records the prompts it received.
type stubGenerator struct {
	responses []string
	errs      []error
	prompts   []string
}

func (s *stubGenerator) GenerateJSON(_ context.Context, prompt string, _ *genai.Schema) (string, error) {
	s.prompts = append(s.prompts, prompt)

	i := len(s.prompts) - 1
	if i < len(s.errs) && s.errs[i] != nil {
		return "", s.errs[i]
	}
	if i < len(s.responses) {
		return s.responses[i], nil
	}
	return "", errors.New("stub exhausted")
}

func (s *stubGenerator) Model() string { return "stub-model" }

func jobRequest() *ai.JobRequest {
	return &ai.JobRequest{
		AdvertText: "We need a platform engineer.",
		Job:        career.Job{ID: 4, Position: "Platform Engineer", Organization: "Acme", Date: []string{"2022"}},
		Statement:  "ran the platform team",
		Stories: []career.CarStory{
			{JobID: 4, Challenge: "c", Action: "a", Result: "r", Skills: []string{"Go"}},
		},
		Skills: []string{"Go", "Kubernetes"},
	}
}

func TestJobContentParsesValidResponse(t *testing.T) {
	gen := &stubGenerator{responses: []string{
		`{"description": "Built the platform.", "bullets": ["cut deploy time", "halved costs"]}`,
	}}
	synth := NewSynthesizer(gen, 3, 0, nil)

	content, err := synth.JobContent(context.Background(), jobRequest())
	require.NoError(t, err)

	assert.Equal(t, 4, content.JobID)
	assert.Equal(t, "Built the platform.", content.Description)
	assert.Equal(t, []string{"cut deploy time", "halved costs"}, content.Bullets)

	require.Len(t, gen.prompts, 1)
	prompt := gen.prompts[0]
	assert.Contains(t, prompt, "We need a platform engineer.")
	assert.Contains(t, prompt, "ran the platform team")
	assert.Contains(t, prompt, "Platform Engineer")
	assert.Contains(t, prompt, "Go, Kubernetes")
	assert.NotContains(t, prompt, "{{")
}

func TestJobContentStripsCodeFences(t *testing.T) {
	gen := &stubGenerator{responses: []string{
		"```json\n{\"description\": \"d\", \"bullets\": [\"b\"]}\n```",
	}}
	synth := NewSynthesizer(gen, 3, 0, nil)

	content, err := synth.JobContent(context.Background(), jobRequest())
	require.NoError(t, err)
	assert.Equal(t, "d", content.Description)
}

func TestJobContentAcceptsEmptyBulletsForStorylessJob(t *testing.T) {
	gen := &stubGenerator{responses: []string{
		`{"description": "Tailored description.", "bullets": []}`,
	}}
	synth := NewSynthesizer(gen, 3, 0, nil)

	req := jobRequest()
	req.Stories = nil

	content, err := synth.JobContent(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "Tailored description.", content.Description)
	assert.Empty(t, content.Bullets)
	assert.Len(t, gen.prompts, 1, "an honest empty bullets array must validate on the first attempt")
}

func TestJobContentRetriesWithValidationFeedback(t *testing.T) {
	gen := &stubGenerator{responses: []string{
		`{"description": "missing the bullets"}`,
		`{"description": "d", "bullets": ["b"]}`,
	}}
	synth := NewSynthesizer(gen, 3, 0, nil)

	content, err := synth.JobContent(context.Background(), jobRequest())
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, content.Bullets)

	require.Len(t, gen.prompts, 2)
	assert.NotContains(t, gen.prompts[0], "rejected")
	assert.Contains(t, gen.prompts[1], "Your previous reply was rejected")
	assert.Contains(t, gen.prompts[1], "bullets")
}

func TestJobContentExhaustsRetryBudget(t *testing.T) {
	gen := &stubGenerator{responses: []string{
		`not json at all`,
		`{"description": ""}`,
		`{"bullets": []}`,
	}}
	synth := NewSynthesizer(gen, 3, 0, nil)

	_, err := synth.JobContent(context.Background(), jobRequest())

	var synthErr *ai.SynthesisError
	require.ErrorAs(t, err, &synthErr)
	assert.Equal(t, ai.StageJobContent, synthErr.Stage)
	assert.Equal(t, 4, synthErr.JobID)
	assert.Equal(t, 3, synthErr.Attempts)
	assert.NotEmpty(t, synthErr.LastValidation)
	assert.Len(t, gen.prompts, 3)
}

func TestJobContentReturnsTransportError(t *testing.T) {
	transport := errors.New("connection reset")
	gen := &stubGenerator{errs: []error{transport}}
	synth := NewSynthesizer(gen, 1, 0, nil)

	start := time.Now()
	_, err := synth.JobContent(context.Background(), jobRequest())

	var synthErr *ai.SynthesisError
	require.ErrorAs(t, err, &synthErr)
	assert.Equal(t, 1, synthErr.Attempts)
	assert.ErrorIs(t, err, transport)

	// The final attempt fails without a trailing backoff sleep.
	assert.Less(t, time.Since(start), retryBackoff)
}

func TestJobContentStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gen := &stubGenerator{errs: []error{errors.New("canceled upstream")}}
	synth := NewSynthesizer(gen, 3, 0, nil)

	_, err := synth.JobContent(ctx, jobRequest())

	require.ErrorIs(t, err, context.Canceled)
	assert.Len(t, gen.prompts, 1)
}

func TestSummaryParsesValidResponse(t *testing.T) {
	gen := &stubGenerator{responses: []string{`{"summary": "A platform engineer."}`}}
	synth := NewSynthesizer(gen, 3, 0, nil)

	summary, err := synth.Summary(context.Background(), &ai.SummaryRequest{
		AdvertText: "ad text",
		Skills:     []string{"Go"},
	})
	require.NoError(t, err)
	assert.Equal(t, "A platform engineer.", summary)

	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "ad text")
}

func TestSummaryErrorCarriesStage(t *testing.T) {
	gen := &stubGenerator{responses: []string{`{}`, `{}`}}
	synth := NewSynthesizer(gen, 2, 0, nil)

	_, err := synth.Summary(context.Background(), &ai.SummaryRequest{})

	var synthErr *ai.SynthesisError
	require.ErrorAs(t, err, &synthErr)
	assert.Equal(t, ai.StageSummary, synthErr.Stage)
	assert.Equal(t, 2, synthErr.Attempts)
}

func TestExtractJSON(t *testing.T) {
	cases := map[string]string{
		`{"a":1}`:                       `{"a":1}`,
		"```json\n{\"a\":1}\n```":       `{"a":1}`,
		"```\n{\"a\":1}\n```":           `{"a":1}`,
		"  \n{\"a\":1}\n  ":             `{"a":1}`,
		"```json\n{\"a\":1}\n```\n":     `{"a":1}`,
	}

	for in, want := range cases {
		assert.Equal(t, want, extractJSON(in), "input %q", in)
	}
}
