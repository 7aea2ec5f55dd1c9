// Package ai defines the content synthesis capability and the fan-out runner
// driving it. The live Gemini implementation lives in the gemini subpackage;
// Offline is the deterministic stand-in used for layout testing.
package ai

import (
	"context"
	"fmt"

	"github.com/spigell/cv-tailor/internal/career"
)

// Mode selects between live AI synthesis and deterministic placeholders.
type Mode string

const (
	ModeLive    Mode = "live"
	ModeOffline Mode = "offline"
)

// Stage names the synthesis request class for error reporting.
type Stage string

const (
	StageJobContent Stage = "job_content"
	StageSummary    Stage = "summary"
)

// JobRequest carries everything one per-job generation request needs.
// Requests for independent jobs share no mutable state and are safe to issue
// in parallel.
type JobRequest struct {
	AdvertText string
	Job        career.Job
	Statement  string
	Stories    []career.CarStory
	Skills     []string
}

// SummaryRequest carries the input of the once-per-run summary request.
type SummaryRequest struct {
	AdvertText string
	Skills     []string
}

// JobContent is the tailored content for one job entry.
type JobContent struct {
	JobID       int      `json:"job"`
	Description string   `json:"description"`
	Bullets     []string `json:"bullets"`
}

// ProjectContent is a tailored side-project entry. Absence degrades to an
// empty section during assembly.
type ProjectContent struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Bullets     []string `json:"bullets"`
}

// TailoredContent is the complete synthesized content model, the only
// structure built from AI output.
type TailoredContent struct {
	Jobs     []JobContent
	Projects []ProjectContent
	Summary  string
}

// Synthesizer is the generation capability. Offline mode is an alternative
// implementation of the same interface rather than a branch scattered through
// the pipeline.
type Synthesizer interface {
	JobContent(ctx context.Context, req *JobRequest) (*JobContent, error)
	Summary(ctx context.Context, req *SummaryRequest) (string, error)
}

// SynthesisError reports an exhausted retry budget or an unrecoverable
// transport failure. It is fatal for the whole run, not the single job, so a
// half-tailored document is never produced.
type SynthesisError struct {
	Stage          Stage
	JobID          int
	Attempts       int
	LastValidation string
	Cause          error
}

func (e *SynthesisError) Error() string {
	target := string(e.Stage)
	if e.Stage == StageJobContent {
		target = fmt.Sprintf("job %d", e.JobID)
	}
	if e.LastValidation != "" {
		return fmt.Sprintf("synthesis for %s failed after %d attempts: %s", target, e.Attempts, e.LastValidation)
	}
	return fmt.Sprintf("synthesis for %s failed after %d attempts: %v", target, e.Attempts, e.Cause)
}

func (e *SynthesisError) Unwrap() error { return e.Cause }
