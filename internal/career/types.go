// Package career holds the candidate's raw career records and links them by
// their shared job identifier.
package career

// Job is one employment period. ID is the join key for CarStory and
// Statement records.
type Job struct {
	ID           int      `mapstructure:"job" validate:"required,gt=0"`
	Position     string   `mapstructure:"position" validate:"required"`
	Organization string   `mapstructure:"organization" validate:"required"`
	Location     string   `mapstructure:"location"`
	// Date holds the start and end of the employment period, e.g.
	// ["2020", "2022"]. An open-ended range keeps a single element.
	Date []string `mapstructure:"date" validate:"required,min=1,max=2"`
}

// End returns the end of the job's date range, the recency key used when the
// shortlist keeps the most recent jobs.
func (j Job) End() string {
	if len(j.Date) == 0 {
		return ""
	}
	return j.Date[len(j.Date)-1]
}

// CarStory is one Challenge-Action-Result accomplishment narrative, tagged
// with the skills it demonstrates. Multiple stories may share a JobID.
type CarStory struct {
	JobID     int      `mapstructure:"job" validate:"required,gt=0"`
	Challenge string   `mapstructure:"challenge" validate:"required"`
	Action    string   `mapstructure:"action" validate:"required"`
	Result    string   `mapstructure:"result" validate:"required"`
	Skills    []string `mapstructure:"skills"`
}

// Statement is a short free-form sentence about one employment period.
type Statement struct {
	JobID int    `mapstructure:"job" validate:"required,gt=0"`
	Text  string `mapstructure:"statement" validate:"required"`
}

// SkillGroup is an ordered set of skills under one category.
type SkillGroup struct {
	Category string   `mapstructure:"category" validate:"required"`
	Items    []string `mapstructure:"items" validate:"required,min=1"`
}

// Education is passed through to rendering unchanged.
type Education struct {
	ID           int      `mapstructure:"edu" validate:"required,gt=0"`
	Title        string   `mapstructure:"title" validate:"required"`
	Organization string   `mapstructure:"organization" validate:"required"`
	Location     string   `mapstructure:"location"`
	Date         []string `mapstructure:"date" validate:"required,min=1,max=2"`
	Description  string   `mapstructure:"desc"`
}

// Language is passed through to rendering unchanged.
type Language struct {
	Language string `mapstructure:"language" validate:"required"`
	Level    string `mapstructure:"level" validate:"required"`
}

// Headers is the free-form header metadata (name, address, contact tags).
// Values are strings or ordered string sequences. Headers never reach the AI
// layer.
type Headers map[string]any
