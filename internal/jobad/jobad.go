// Package jobad retrieves a job advertisement from a URL and reduces it to
// plain descriptive text used by the selection and synthesis steps.
package jobad

import (
	"fmt"
	"net/http"
	"time"
)

const (
	userAgent = "spigell/cv-tailor (spigelly@gmail.com)"

	defaultTimeout = 30 * time.Second
)

// Advert is a fetched and normalized job advertisement. It is immutable once
// created; downstream components only read it.
type Advert struct {
	URL     string
	Title   string
	RawHTML string
	// Text is the normalized plain text of the posting. Heading and
	// paragraph boundaries are preserved as line breaks.
	Text string
}

// FetchError reports a network failure or a non-success HTTP status.
type FetchError struct {
	URL        string
	StatusCode int
	Cause      error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetching job ad %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetching job ad %s: %v", e.URL, e.Cause)
}

func (e *FetchError) Unwrap() error { return e.Cause }

// ParseError reports that no extractable text remained after stripping markup.
type ParseError struct {
	URL     string
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing job ad %s: %s", e.URL, e.Message)
}

func (e *ParseError) Unwrap() error { return e.Cause }

// Client fetches job advertisements over HTTP.
type Client struct {
	HTTPClient *http.Client
	UserAgent  string
}

func New() *Client {
	return &Client{
		HTTPClient: &http.Client{
			Timeout: defaultTimeout,
		},
		UserAgent: userAgent,
	}
}
