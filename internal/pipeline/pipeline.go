// Package pipeline wires the tailoring steps into one sequential run:
// load → link → fetch → select → synthesize → assemble. Concurrency happens
// only inside the synthesis fan-out.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/cv-tailor/internal/ai"
	"github.com/spigell/cv-tailor/internal/assemble"
	"github.com/spigell/cv-tailor/internal/career"
	"github.com/spigell/cv-tailor/internal/jobad"
	"github.com/spigell/cv-tailor/internal/selection"
)

// Fetcher retrieves the job advertisement. It is an interface so tests can
// run the pipeline without a network.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*jobad.Advert, error)
}

// Options carries the immutable per-run configuration.
type Options struct {
	// URL of the job advertisement. May be empty in OFFLINE mode; the run
	// then uses the un-tailored default path.
	URL string
	// DataDir is the career data directory.
	DataDir string

	Mode        ai.Mode
	Selection   selection.Params
	Concurrency int

	// Synthesizer must be set for ModeLive. For ModeOffline it defaults
	// to the deterministic placeholder implementation.
	Synthesizer ai.Synthesizer
	// Fetcher defaults to the HTTP client.
	Fetcher Fetcher

	Logger *zap.Logger
}

// Run executes the tailoring pipeline and returns the render context.
// Career data is loaded and linkage-validated before any network call, so
// data-integrity errors never cost AI spend.
func Run(ctx context.Context, opts Options) (assemble.RenderContext, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	data, err := career.LoadDir(opts.DataDir)
	if err != nil {
		return nil, fmt.Errorf("loading career data: %w", err)
	}

	store, err := career.Load(data.Jobs, data.Stories, data.Statements)
	if err != nil {
		return nil, err
	}

	logger.Info("career data loaded",
		zap.Int("jobs", store.Len()),
		zap.Int("carstories", len(data.Stories)),
		zap.Int("skill_groups", len(data.Skills)),
	)

	advert := &jobad.Advert{}
	if opts.URL != "" {
		fetcher := opts.Fetcher
		if fetcher == nil {
			fetcher = jobad.New()
		}

		advert, err = fetcher.Fetch(ctx, opts.URL)
		if err != nil {
			return nil, err
		}

		logger.Info("job ad fetched",
			zap.String("url", advert.URL),
			zap.String("title", advert.Title),
			zap.Int("text_length", len(advert.Text)),
		)
	}

	shortlist := selection.Select(advert, store, data.Skills, opts.Selection)
	if shortlist.Empty() {
		logger.Info("nothing judged relevant; continuing with un-tailored entries")
	}

	synth := opts.Synthesizer
	if synth == nil {
		if opts.Mode == ai.ModeLive {
			return nil, errors.New("live mode requires a synthesizer")
		}
		synth = ai.Offline{}
	}

	content, err := ai.Run(ctx, synth, advert, shortlist, store, opts.Concurrency, logger)
	if err != nil {
		return nil, err
	}

	rc, err := assemble.Assemble(content, store, data.Skills, data.Education, data.Languages, data.Headers)
	if err != nil {
		return nil, err
	}

	return rc, nil
}
