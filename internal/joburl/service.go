package joburl

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"resume-tailor/internal/llm"
	"resume-tailor/internal/shared/metrics"
	"resume-tailor/internal/shared/telemetry"
)

const (
	SourceAI   = "ai"
	SourcePage = "page"
)

var (
	ErrInvalidURL = errors.New("url must be an absolute http or https URL")
	ErrFetch      = errors.New("could not fetch job posting")
	ErrNoContent  = errors.New("no job posting content found")
)

// Posting is the structured job posting extracted from a page.
type Posting struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	Description string `json:"description"`
	Source      string `json:"source"`
}

// Service turns a job posting URL into a Posting.
type Service struct {
	Fetcher Fetcher
	LLM     llm.Completer

	// AllowPrivateHosts skips the public-address check on the input URL.
	AllowPrivateHosts bool
}

func NewService(fetcher Fetcher, completer llm.Completer) *Service {
	return &Service{Fetcher: fetcher, LLM: completer}
}

// ValidateURL accepts only absolute http(s) URLs whose host is not a
// loopback, private, link-local or unspecified address.
func ValidateURL(raw string) (*url.URL, error) {
	return validateURL(raw, false)
}

func validateURL(raw string, allowPrivate bool) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrInvalidURL
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, ErrInvalidURL
	}
	if !allowPrivate {
		if err := checkHostLiteral(u.Hostname()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
		}
	}
	return u, nil
}

func (s *Service) Parse(ctx context.Context, rawURL string) (Posting, error) {
	u, err := validateURL(rawURL, s.AllowPrivateHosts)
	if err != nil {
		return Posting{}, err
	}
	pageURL := u.String()

	html, err := s.Fetcher.Fetch(ctx, pageURL)
	if err != nil {
		metrics.IncJobURLParseFailed()
		if errors.Is(err, ErrBlockedHost) {
			telemetry.Warn("joburl.blocked_host", map[string]any{"url": pageURL, "error": err})
			return Posting{}, fmt.Errorf("%w: %w", ErrInvalidURL, err)
		}
		telemetry.Warn("joburl.fetch_failed", map[string]any{"url": pageURL, "error": err})
		return Posting{}, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	pg, err := extractPage(html)
	if err != nil {
		metrics.IncJobURLParseFailed()
		return Posting{}, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	if pg.Text == "" {
		metrics.IncJobURLParseFailed()
		return Posting{}, ErrNoContent
	}

	posting, err := s.extract(ctx, pageURL, pg)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Posting{}, ctxErr
		}
		telemetry.Warn("joburl.extract_fallback", map[string]any{"url": pageURL, "error": err})
		return fallbackPosting(pageURL, pg), nil
	}
	return posting, nil
}

func (s *Service) extract(ctx context.Context, pageURL string, pg page) (Posting, error) {
	if s.LLM == nil {
		return Posting{}, llm.ErrNotConfigured
	}
	prompt, err := llm.RenderPrompt(llm.PromptJobPosting, map[string]string{
		"URL":        pageURL,
		"PAGE_TITLE": pg.Title,
		"PAGE_TEXT":  pg.Text,
	})
	if err != nil {
		return Posting{}, err
	}
	raw, err := s.LLM.Complete(ctx, prompt)
	if err != nil {
		return Posting{}, err
	}
	payload := llm.JSONPayload(raw)
	if !gjson.Valid(payload) {
		return Posting{}, errors.New("job posting reply is not valid JSON")
	}
	parsed := gjson.Parse(payload)
	posting := Posting{
		URL:         pageURL,
		Title:       strings.TrimSpace(parsed.Get("title").String()),
		Company:     strings.TrimSpace(parsed.Get("company").String()),
		Location:    strings.TrimSpace(parsed.Get("location").String()),
		Description: strings.TrimSpace(parsed.Get("description").String()),
		Source:      SourceAI,
	}
	if posting.Title == "" && posting.Description == "" {
		return Posting{}, errors.New("job posting reply has no title or description")
	}
	if posting.Description == "" {
		posting.Description = pg.Text
	}
	return posting, nil
}

func fallbackPosting(pageURL string, pg page) Posting {
	return Posting{
		URL:         pageURL,
		Title:       pg.Title,
		Company:     pg.SiteName,
		Description: pg.Text,
		Source:      SourcePage,
	}
}
