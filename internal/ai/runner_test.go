package ai

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/cv-tailor/internal/career"
	"github.com/spigell/cv-tailor/internal/jobad"
	"github.com/spigell/cv-tailor/internal/selection"
)

// stubSynthesizer answers from canned content, optionally delaying chosen jobs
// to shuffle completion order.
type stubSynthesizer struct {
	delays   map[int]time.Duration
	failJob  int
	failErr  error
	requests atomic.Int32
}

func (s *stubSynthesizer) JobContent(ctx context.Context, req *JobRequest) (*JobContent, error) {
	s.requests.Add(1)

	if d, ok := s.delays[req.Job.ID]; ok {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(d):
		}
	}

	if s.failJob == req.Job.ID && s.failErr != nil {
		return nil, s.failErr
	}

	return &JobContent{
		JobID:       req.Job.ID,
		Description: fmt.Sprintf("description for job %d", req.Job.ID),
		Bullets:     []string{fmt.Sprintf("bullet for job %d", req.Job.ID)},
	}, nil
}

func (s *stubSynthesizer) Summary(ctx context.Context, _ *SummaryRequest) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}
	return "stub summary", nil
}

func runnerFixtures(t *testing.T) (*career.Store, *selection.Shortlist) {
	t.Helper()

	jobs := []career.Job{
		{ID: 3, Position: "Platform Engineer", Organization: "Acme", Date: []string{"2022"}},
		{ID: 2, Position: "SRE", Organization: "Initech", Date: []string{"2019", "2022"}},
		{ID: 1, Position: "Sysadmin", Organization: "Globex", Date: []string{"2016", "2019"}},
	}
	statements := []career.Statement{{JobID: 2, Text: "ran the on-call rotation"}}

	store, err := career.Load(jobs, nil, statements)
	require.NoError(t, err)

	list := &selection.Shortlist{}
	for _, job := range jobs {
		list.Jobs = append(list.Jobs, selection.JobPick{Job: job})
	}
	return store, list
}

func TestRunKeepsShortlistOrderDespiteCompletionOrder(t *testing.T) {
	store, list := runnerFixtures(t)

	// The first job finishes last; output order must not care.
	synth := &stubSynthesizer{delays: map[int]time.Duration{3: 50 * time.Millisecond}}

	content, err := Run(context.Background(), synth, &jobad.Advert{Text: "ad"}, list, store, 4, nil)
	require.NoError(t, err)

	require.Len(t, content.Jobs, 3)
	assert.Equal(t, 3, content.Jobs[0].JobID)
	assert.Equal(t, 2, content.Jobs[1].JobID)
	assert.Equal(t, 1, content.Jobs[2].JobID)
	assert.Equal(t, "stub summary", content.Summary)
}

func TestRunFailsFastOnSynthesisError(t *testing.T) {
	store, list := runnerFixtures(t)

	wantErr := &SynthesisError{Stage: StageJobContent, JobID: 2, Attempts: 3, LastValidation: "bullets is required"}
	synth := &stubSynthesizer{failJob: 2, failErr: wantErr}

	_, err := Run(context.Background(), synth, &jobad.Advert{Text: "ad"}, list, store, 4, nil)

	var synthErr *SynthesisError
	require.ErrorAs(t, err, &synthErr)
	assert.Equal(t, 2, synthErr.JobID)
	assert.Equal(t, 3, synthErr.Attempts)
}

func TestRunCancelsPendingRequestsOnFailure(t *testing.T) {
	store, list := runnerFixtures(t)

	synth := &stubSynthesizer{
		failJob: 3,
		failErr: errors.New("boom"),
		delays: map[int]time.Duration{
			1: 5 * time.Second,
			2: 5 * time.Second,
		},
	}

	start := time.Now()
	_, err := Run(context.Background(), synth, &jobad.Advert{Text: "ad"}, list, store, 4, nil)

	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second, "pending requests must be canceled, not awaited")
}

func TestRunPassesStatementAndStories(t *testing.T) {
	store, list := runnerFixtures(t)
	story := career.CarStory{JobID: 2, Challenge: "c", Action: "a", Result: "r"}
	list.Jobs[1].Stories = []selection.ScoredStory{{Story: story, Score: 5}}

	var captured *JobRequest
	synth := &captureSynthesizer{onJob: func(req *JobRequest) {
		if req.Job.ID == 2 {
			captured = req
		}
	}}

	_, err := Run(context.Background(), synth, &jobad.Advert{Text: "ad"}, list, store, 1, nil)
	require.NoError(t, err)

	require.NotNil(t, captured)
	assert.Equal(t, "ran the on-call rotation", captured.Statement)
	require.Len(t, captured.Stories, 1)
	assert.Equal(t, story, captured.Stories[0])
}

type captureSynthesizer struct {
	onJob func(*JobRequest)
}

func (s *captureSynthesizer) JobContent(_ context.Context, req *JobRequest) (*JobContent, error) {
	if s.onJob != nil {
		s.onJob(req)
	}
	return &JobContent{JobID: req.Job.ID, Description: "d", Bullets: []string{"b"}}, nil
}

func (s *captureSynthesizer) Summary(context.Context, *SummaryRequest) (string, error) {
	return "s", nil
}
