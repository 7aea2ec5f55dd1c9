package jobad

import (
	"errors"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// noiseSelector lists elements that never carry posting content.
const noiseSelector = "script, style, noscript, nav, footer, header, iframe, form, svg, .ad, .ads, .cookie-banner, .sidebar"

// blockSelector lists the block-level elements whose boundaries are kept as
// line breaks so the prompt retains the ad's section structure.
const blockSelector = "h1, h2, h3, h4, h5, h6, p, li, dt, dd, blockquote"

var errNoText = errors.New("document contains no text")

// Normalize strips markup from the HTML document and returns the page title
// plus the plain posting text. Block boundaries become line breaks and
// whitespace inside each line is collapsed.
func Normalize(html string) (title, text string, err error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", "", err
	}

	title = strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("h1").First().Text())
	}

	doc.Find(noiseSelector).Remove()

	lines := make([]string, 0)
	doc.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		// Nested blocks (a p inside an li) are emitted by their
		// innermost element only.
		if s.Find(blockSelector).Length() > 0 {
			return
		}
		if line := collapseWhitespace(s.Text()); line != "" {
			lines = append(lines, line)
		}
	})

	text = strings.Join(lines, "\n")
	if text == "" {
		// Pages without block markup still may carry raw text.
		text = collapseWhitespace(doc.Find("body").Text())
	}

	if text == "" {
		return "", "", errNoText
	}

	return title, text, nil
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
