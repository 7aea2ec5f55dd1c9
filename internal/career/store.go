package career

import (
	"fmt"
	"sort"
	"strings"
)

// Store is the in-memory view of the linked career records. It is immutable
// after Load and safe to share across concurrent synthesis tasks.
type Store struct {
	// Jobs keeps the source ordering, which the data files maintain
	// reverse-chronologically. Rendering order always follows it.
	Jobs []Job

	byID       map[int]Job
	stories    map[int][]CarStory
	statements map[int]Statement
}

// Orphan identifies a record whose job reference has no matching Job.
type Orphan struct {
	Kind  string // "carstory" or "statement"
	JobID int
}

// LinkageError reports every carstory/statement whose job id has no matching
// Job record. It is fatal: downstream selection would silently mis-rank
// orphaned records otherwise.
type LinkageError struct {
	Orphans []Orphan
}

func (e *LinkageError) Error() string {
	refs := make([]string, 0, len(e.Orphans))
	for _, o := range e.Orphans {
		refs = append(refs, fmt.Sprintf("%s references unknown job %d", o.Kind, o.JobID))
	}
	return "career data linkage failed: " + strings.Join(refs, "; ")
}

// Load builds the record store from already-parsed record sequences. All
// dangling references are collected into a single *LinkageError. Duplicate
// statements for one job are tolerated: the first encountered wins.
func Load(jobs []Job, stories []CarStory, statements []Statement) (*Store, error) {
	s := &Store{
		Jobs:       jobs,
		byID:       make(map[int]Job, len(jobs)),
		stories:    make(map[int][]CarStory),
		statements: make(map[int]Statement),
	}

	for _, job := range jobs {
		if _, ok := s.byID[job.ID]; ok {
			return nil, fmt.Errorf("duplicate job id %d", job.ID)
		}
		s.byID[job.ID] = job
	}

	var orphans []Orphan

	for _, story := range stories {
		if _, ok := s.byID[story.JobID]; !ok {
			orphans = append(orphans, Orphan{Kind: "carstory", JobID: story.JobID})
			continue
		}
		s.stories[story.JobID] = append(s.stories[story.JobID], story)
	}

	for _, statement := range statements {
		if _, ok := s.byID[statement.JobID]; !ok {
			orphans = append(orphans, Orphan{Kind: "statement", JobID: statement.JobID})
			continue
		}
		if _, exists := s.statements[statement.JobID]; exists {
			continue
		}
		s.statements[statement.JobID] = statement
	}

	if len(orphans) > 0 {
		sort.SliceStable(orphans, func(i, j int) bool { return orphans[i].JobID < orphans[j].JobID })
		return nil, &LinkageError{Orphans: orphans}
	}

	return s, nil
}

// Job returns the job record for the given id.
func (s *Store) Job(id int) (Job, bool) {
	job, ok := s.byID[id]
	return job, ok
}

// Stories returns the CAR stories linked to the given job, in source order.
func (s *Store) Stories(jobID int) []CarStory {
	return s.stories[jobID]
}

// Statement returns the statement linked to the given job, if any.
func (s *Store) Statement(jobID int) (Statement, bool) {
	statement, ok := s.statements[jobID]
	return statement, ok
}

// Len returns the number of job records.
func (s *Store) Len() int {
	return len(s.Jobs)
}
