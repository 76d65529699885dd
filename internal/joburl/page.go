package joburl

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

const (
	minContentChars = 200
	maxContentChars = 12000
)

// candidate containers, most specific first
var contentSelectors = []string{
	`[class*="job-description"]`,
	`[class*="description"]`,
	`#job-details`,
	`.posting`,
	`article`,
	`main`,
	`body`,
}

const noiseSelector = "script, style, noscript, iframe, svg, template"

const blockSelector = "p, li, h1, h2, h3, h4, h5, h6, div, section, article, tr, br, dd, dt"

// page is the readable part of a fetched posting.
type page struct {
	Title    string
	SiteName string
	Text     string
}

func extractPage(html string) (page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return page{}, err
	}
	out := page{
		Title:    firstNonEmpty(metaContent(doc, "og:title"), strings.TrimSpace(doc.Find("title").First().Text())),
		SiteName: metaContent(doc, "og:site_name"),
	}

	doc.Find(noiseSelector).Remove()
	doc.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		s.AfterHtml("\n")
	})

	for _, selector := range contentSelectors {
		best := ""
		doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
			if text := normalizeText(s.Text()); utf8.RuneCountInString(text) > utf8.RuneCountInString(best) {
				best = text
			}
		})
		if utf8.RuneCountInString(best) >= minContentChars || (selector == "body" && best != "") {
			out.Text = truncateRunes(best, maxContentChars)
			break
		}
	}
	return out, nil
}

func metaContent(doc *goquery.Document, property string) string {
	sel := doc.Find(`meta[property="` + property + `"], meta[name="` + property + `"]`).First()
	content, _ := sel.Attr("content")
	return strings.TrimSpace(content)
}

// normalizeText collapses runs of spaces within lines and drops blank lines.
func normalizeText(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
