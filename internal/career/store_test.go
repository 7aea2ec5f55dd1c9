package career

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJobs() []Job {
	return []Job{
		{ID: 3, Position: "Platform Engineer", Organization: "Acme", Date: []string{"2022"}},
		{ID: 2, Position: "SRE", Organization: "Initech", Date: []string{"2019", "2022"}},
		{ID: 1, Position: "Sysadmin", Organization: "Globex", Date: []string{"2016", "2019"}},
	}
}

func TestLoadLinksRecordsByJobID(t *testing.T) {
	stories := []CarStory{
		{JobID: 2, Challenge: "c1", Action: "a1", Result: "r1"},
		{JobID: 3, Challenge: "c2", Action: "a2", Result: "r2"},
		{JobID: 2, Challenge: "c3", Action: "a3", Result: "r3"},
	}
	statements := []Statement{
		{JobID: 1, Text: "kept the lights on"},
	}

	store, err := Load(testJobs(), stories, statements)
	require.NoError(t, err)

	assert.Equal(t, 3, store.Len())
	// Source order survives into the store.
	assert.Equal(t, []int{3, 2, 1}, []int{store.Jobs[0].ID, store.Jobs[1].ID, store.Jobs[2].ID})

	got := store.Stories(2)
	require.Len(t, got, 2)
	assert.Equal(t, "c1", got[0].Challenge)
	assert.Equal(t, "c3", got[1].Challenge)

	statement, ok := store.Statement(1)
	require.True(t, ok)
	assert.Equal(t, "kept the lights on", statement.Text)

	_, ok = store.Statement(3)
	assert.False(t, ok)
}

func TestLoadCollectsAllOrphans(t *testing.T) {
	stories := []CarStory{
		{JobID: 99, Challenge: "c", Action: "a", Result: "r"},
		{JobID: 2, Challenge: "c", Action: "a", Result: "r"},
	}
	statements := []Statement{
		{JobID: 41, Text: "dangling"},
	}

	_, err := Load(testJobs(), stories, statements)

	var linkErr *LinkageError
	require.ErrorAs(t, err, &linkErr)
	require.Len(t, linkErr.Orphans, 2)
	assert.Equal(t, Orphan{Kind: "statement", JobID: 41}, linkErr.Orphans[0])
	assert.Equal(t, Orphan{Kind: "carstory", JobID: 99}, linkErr.Orphans[1])
	assert.Contains(t, err.Error(), "carstory references unknown job 99")
	assert.Contains(t, err.Error(), "statement references unknown job 41")
}

func TestLoadRejectsDuplicateJobID(t *testing.T) {
	jobs := append(testJobs(), Job{ID: 2, Position: "Dup", Organization: "Dup", Date: []string{"2010"}})

	_, err := Load(jobs, nil, nil)
	require.ErrorContains(t, err, "duplicate job id 2")
}

func TestLoadFirstStatementWinsPerJob(t *testing.T) {
	statements := []Statement{
		{JobID: 2, Text: "first"},
		{JobID: 2, Text: "second"},
	}

	store, err := Load(testJobs(), nil, statements)
	require.NoError(t, err)

	statement, ok := store.Statement(2)
	require.True(t, ok)
	assert.Equal(t, "first", statement.Text)
}

func TestJobEnd(t *testing.T) {
	assert.Equal(t, "2022", Job{Date: []string{"2019", "2022"}}.End())
	assert.Equal(t, "2023", Job{Date: []string{"2023"}}.End())
	assert.Empty(t, Job{}.End())
}
