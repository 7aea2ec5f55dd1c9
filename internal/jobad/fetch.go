package jobad

import (
	"context"
	"io"
	"net/http"
	"net/url"
)

// Fetch retrieves the advertisement at the given URL and normalizes it to
// plain text. It fails with *FetchError on transport problems or non-success
// statuses and with *ParseError when nothing readable remains after stripping
// markup. Retries are the caller's policy.
func (c *Client) Fetch(ctx context.Context, rawURL string) (*Advert, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, &FetchError{URL: rawURL, Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Cause: err}
	}
	req.Header.Set("User-Agent", c.UserAgent)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &FetchError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Cause: err}
	}

	title, text, err := Normalize(string(body))
	if err != nil {
		return nil, &ParseError{URL: rawURL, Message: "no extractable text", Cause: err}
	}

	return &Advert{
		URL:     rawURL,
		Title:   title,
		RawHTML: string(body),
		Text:    text,
	}, nil
}
