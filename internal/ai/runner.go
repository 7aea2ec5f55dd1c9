package ai

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/cv-tailor/internal/career"
	"github.com/spigell/cv-tailor/internal/jobad"
	"github.com/spigell/cv-tailor/internal/selection"
)

// DefaultConcurrency bounds parallel requests to stay within provider rate
// limits when no limit is configured.
const DefaultConcurrency = 3

// Run fans out one generation request per shortlisted job plus a single
// summary request. Results land in a slice indexed by shortlist position, so
// completion order never leaks into document order. The first failing request
// cancels the rest of the group: a partially tailored document is worse than
// a loud failure.
func Run(ctx context.Context, synth Synthesizer, advert *jobad.Advert, list *selection.Shortlist, store *career.Store, concurrency int, logger *zap.Logger) (*TailoredContent, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	var advertText string
	if advert != nil {
		advertText = advert.Text
	}

	results := make([]*JobContent, len(list.Jobs))
	var summary string

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, pick := range list.Jobs {
		g.Go(func() error {
			req := &JobRequest{
				AdvertText: advertText,
				Job:        pick.Job,
				Skills:     list.AllSkills(),
			}
			if statement, ok := store.Statement(pick.Job.ID); ok {
				req.Statement = statement.Text
			}
			for _, scored := range pick.Stories {
				req.Stories = append(req.Stories, scored.Story)
			}

			content, err := synth.JobContent(ctx, req)
			if err != nil {
				return err
			}

			logger.Debug("job content synthesized",
				zap.Int("job_id", pick.Job.ID),
				zap.Int("bullets", len(content.Bullets)),
			)

			results[i] = content
			return nil
		})
	}

	g.Go(func() error {
		var err error
		summary, err = synth.Summary(ctx, &SummaryRequest{
			AdvertText: advertText,
			Skills:     list.AllSkills(),
		})
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	content := &TailoredContent{Summary: summary}
	for _, result := range results {
		if result == nil {
			continue
		}
		content.Jobs = append(content.Jobs, *result)
	}

	return content, nil
}
