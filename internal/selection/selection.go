// Package selection scores career records against the normalized job ad text
// and produces the bounded shortlist sent to the synthesis layer.
//
// Selection is fully deterministic: identical inputs produce identical
// shortlists on every run, independent of any AI variability, since it gates
// what is even sent to the AI layer.
package selection

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/spigell/cv-tailor/internal/career"
	"github.com/spigell/cv-tailor/internal/jobad"
)

const (
	DefaultMaxJobs          = 4
	DefaultMaxStoriesPerJob = 3

	// A declared skill hit is worth more than a plain text token hit.
	skillMatchWeight = 2
)

// Params bounds the shortlist size, capping both AI request size and
// document length.
type Params struct {
	MaxJobs          int
	MaxStoriesPerJob int
}

func DefaultParams() Params {
	return Params{
		MaxJobs:          DefaultMaxJobs,
		MaxStoriesPerJob: DefaultMaxStoriesPerJob,
	}
}

// Shortlist is the relevance-ranked, bounded subset of career records
// selected for tailoring. Jobs keep the record store's source order.
type Shortlist struct {
	Jobs   []JobPick
	Skills []SkillPick
}

// JobPick is one job together with its ranked story subset.
type JobPick struct {
	Job     career.Job
	Stories []ScoredStory
}

// ScoredStory pairs a CAR story with its relevance score.
type ScoredStory struct {
	Story career.CarStory
	Score int
}

// SkillPick is the relevant subset of one skill group, ranked by match
// strength.
type SkillPick struct {
	Category string
	Items    []string
}

// AllSkills returns the selected skill items across all groups, in shortlist
// order. The summary request uses it.
func (s *Shortlist) AllSkills() []string {
	items := make([]string, 0)
	for _, pick := range s.Skills {
		items = append(items, pick.Items...)
	}
	return items
}

// Empty reports whether nothing was judged relevant.
func (s *Shortlist) Empty() bool {
	if len(s.Skills) > 0 {
		return false
	}
	for _, pick := range s.Jobs {
		if len(pick.Stories) > 0 {
			return false
		}
	}
	return true
}

// Select ranks each job's CAR stories and each group's skill items against
// the advert text. The MaxJobs most recent jobs are kept (recency by the end
// of the date range, ties keep source order), each with its top
// MaxStoriesPerJob stories. An empty advert text yields the job entries with
// zero stories and skills, never an error; callers then take an un-tailored
// default path.
func Select(advert *jobad.Advert, store *career.Store, groups []career.SkillGroup, params Params) *Shortlist {
	if params.MaxJobs <= 0 {
		params.MaxJobs = DefaultMaxJobs
	}
	if params.MaxStoriesPerJob <= 0 {
		params.MaxStoriesPerJob = DefaultMaxStoriesPerJob
	}

	var advertText string
	if advert != nil {
		advertText = advert.Text
	}
	tokens := tokenize(advertText)
	advertLower := strings.ToLower(advertText)

	list := &Shortlist{}

	// The data files keep jobs reverse-chronological, so the stable sort
	// normally preserves source order; End decides when they do not.
	jobs := make([]career.Job, len(store.Jobs))
	copy(jobs, store.Jobs)
	sort.SliceStable(jobs, func(i, j int) bool { return jobs[i].End() > jobs[j].End() })
	if len(jobs) > params.MaxJobs {
		jobs = jobs[:params.MaxJobs]
	}

	for _, job := range jobs {
		pick := JobPick{Job: job}
		if len(tokens) > 0 {
			pick.Stories = rankStories(store.Stories(job.ID), tokens, advertLower, params.MaxStoriesPerJob)
		}
		list.Jobs = append(list.Jobs, pick)
	}

	if len(tokens) > 0 {
		for _, group := range groups {
			if items := rankItems(group.Items, tokens, advertLower); len(items) > 0 {
				list.Skills = append(list.Skills, SkillPick{Category: group.Category, Items: items})
			}
		}
	}

	return list
}

// rankStories scores each story and keeps the top limit entries. Ties keep
// the source order (stories of one job share the job's recency, so the
// recency tie breaker reduces to original list order here).
func rankStories(stories []career.CarStory, tokens map[string]struct{}, advertLower string, limit int) []ScoredStory {
	scored := make([]ScoredStory, 0, len(stories))
	for _, story := range stories {
		score := overlap(story.Challenge+" "+story.Action+" "+story.Result, tokens)
		for _, skill := range story.Skills {
			if skillMatches(skill, advertLower) {
				score += skillMatchWeight
			}
		}
		if score == 0 {
			continue
		}
		scored = append(scored, ScoredStory{Story: story, Score: score})
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })

	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}

// rankItems keeps the skill items mentioned by the advert, strongest matches
// first, original order on ties.
func rankItems(items []string, tokens map[string]struct{}, advertLower string) []string {
	type scoredItem struct {
		item  string
		score int
	}

	scored := make([]scoredItem, 0, len(items))
	for _, item := range items {
		score := overlap(item, tokens)
		if score == 0 && skillMatches(item, advertLower) {
			score = 1
		}
		if score == 0 {
			continue
		}
		scored = append(scored, scoredItem{item: item, score: score})
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].score > scored[j].score })

	ranked := make([]string, 0, len(scored))
	for _, s := range scored {
		ranked = append(ranked, s.item)
	}
	return ranked
}

// skillMatches reports whether the declared skill appears in the advert as a
// whole phrase on token boundaries. Short names like "Go" or "C" are lost by
// tokenization, and a bare substring check would hit inside words such as
// "google".
func skillMatches(skill, advertLower string) bool {
	skill = strings.ToLower(strings.TrimSpace(skill))
	if skill == "" {
		return false
	}

	for offset := 0; ; {
		idx := strings.Index(advertLower[offset:], skill)
		if idx < 0 {
			return false
		}
		idx += offset

		before, _ := utf8.DecodeLastRuneInString(advertLower[:idx])
		after, _ := utf8.DecodeRuneInString(advertLower[idx+len(skill):])
		if !isTokenRune(before) && !isTokenRune(after) {
			return true
		}
		offset = idx + 1
	}
}

// overlap counts the unique tokens of text present in the advert token set.
func overlap(text string, tokens map[string]struct{}) int {
	seen := make(map[string]struct{})
	for _, token := range splitTokens(text) {
		if _, ok := tokens[token]; !ok {
			continue
		}
		seen[token] = struct{}{}
	}
	return len(seen)
}

func tokenize(text string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, token := range splitTokens(text) {
		tokens[token] = struct{}{}
	}
	return tokens
}

// stopwords are frequent ad boilerplate tokens that carry no signal.
var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "you": {}, "your": {},
	"our": {}, "are": {}, "will": {}, "have": {}, "this": {}, "that": {},
	"from": {}, "who": {}, "what": {}, "als": {}, "und": {}, "der": {},
	"die": {}, "das": {}, "mit": {}, "von": {}, "für": {},
}

func splitTokens(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !isTokenRune(r)
	})

	tokens := make([]string, 0, len(fields))
	for _, field := range fields {
		if len([]rune(field)) < 3 {
			continue
		}
		if _, ok := stopwords[field]; ok {
			continue
		}
		tokens = append(tokens, field)
	}
	return tokens
}

func isTokenRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		return true
	case r >= 'à' && r <= 'ÿ', r == 'ß':
		// Keep accented letters; the source data is partly German.
		return true
	default:
		return false
	}
}
