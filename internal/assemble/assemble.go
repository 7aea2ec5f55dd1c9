// Package assemble merges synthesized content, passthrough records and header
// metadata into the render context consumed by the template renderer.
package assemble

import (
	"fmt"

	"github.com/spigell/cv-tailor/internal/ai"
	"github.com/spigell/cv-tailor/internal/career"
)

// RenderContext is the final mapping handed to the rendering collaborator.
type RenderContext map[string]any

// JobEntry is one experience entry of the render context. Description and
// Bullets stay empty for jobs without synthesized content, matching the
// template's empty-section handling.
type JobEntry struct {
	Job         career.Job
	Description string
	Bullets     []string
}

// AssemblyError reports a missing mandatory top-level key.
type AssemblyError struct {
	Key string
}

func (e *AssemblyError) Error() string {
	return fmt.Sprintf("assembling render context: required header %q is missing", e.Key)
}

// Assemble merges the tailored content with the passthrough records. Job
// entries are re-ordered into the record store's job order, so the completion
// order of parallel synthesis tasks never leaks into the document. The only
// hard requirement is headers["name"]; every other absence degrades to an
// empty section.
func Assemble(content *ai.TailoredContent, store *career.Store, groups []career.SkillGroup, education []career.Education, languages []career.Language, headers career.Headers) (RenderContext, error) {
	name, ok := headerValue(headers, "name")
	if !ok {
		return nil, &AssemblyError{Key: "name"}
	}

	byID := make(map[int]ai.JobContent)
	if content != nil {
		for _, job := range content.Jobs {
			byID[job.JobID] = job
		}
	}

	entries := make([]JobEntry, 0, store.Len())
	for _, job := range store.Jobs {
		entry := JobEntry{Job: job}
		if tailored, ok := byID[job.ID]; ok {
			entry.Description = tailored.Description
			entry.Bullets = tailored.Bullets
		}
		entries = append(entries, entry)
	}

	var summary string
	var projects []ai.ProjectContent
	if content != nil {
		summary = content.Summary
		projects = content.Projects
	}

	return RenderContext{
		"headers":   headers,
		"name":      name,
		"summary":   summary,
		"jobs":      entries,
		"projects":  projects,
		"education": education,
		"languages": languages,
		"skills":    groups,
	}, nil
}

// headerValue fetches a header tag, rejecting empty strings and empty
// sequences.
func headerValue(headers career.Headers, key string) (any, bool) {
	value, ok := headers[key]
	if !ok {
		return nil, false
	}

	switch v := value.(type) {
	case string:
		if v == "" {
			return nil, false
		}
	case []string:
		if len(v) == 0 {
			return nil, false
		}
	case []any:
		if len(v) == 0 {
			return nil, false
		}
	case nil:
		return nil, false
	}

	return value, true
}
