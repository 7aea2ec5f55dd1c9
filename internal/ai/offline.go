package ai

import "context"

// Placeholder content kept byte-identical across runs so rendering output can
// be regression-tested.
const (
	offlineDescription = "Placeholder description of the work done in this position."
	offlineSummary     = "This is some example text."
)

var offlineBullets = [3]string{
	"Placeholder achievement describing a challenge that was solved.",
	"Placeholder achievement describing the action that was taken.",
	"Placeholder achievement describing the result that was delivered.",
}

// Offline substitutes fixed placeholder content for every request. It makes
// no network calls and produces identical output for identical input.
type Offline struct{}

var _ Synthesizer = (*Offline)(nil)

func (Offline) JobContent(_ context.Context, req *JobRequest) (*JobContent, error) {
	bullets := make([]string, len(offlineBullets))
	copy(bullets, offlineBullets[:])

	return &JobContent{
		JobID:       req.Job.ID,
		Description: offlineDescription,
		Bullets:     bullets,
	}, nil
}

func (Offline) Summary(context.Context, *SummaryRequest) (string, error) {
	return offlineSummary, nil
}
