package thumbnail

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"

	"resume-tailor/resume/model"
)

const (
	defaultWidth   = 600
	defaultHeight  = 776
	defaultTimeout = 30 * time.Second
	maxLines       = 4
)

//go:embed preview.html
var previewHTML string

var previewTemplate = template.Must(template.New("preview").Parse(previewHTML))

// ErrDisabled is returned by the disabled renderer.
var ErrDisabled = errors.New("thumbnails disabled")

// Renderer produces a PNG preview of a resume.
type Renderer interface {
	Render(ctx context.Context, in Input) ([]byte, error)
}

// Input is the resume content shown in the preview.
type Input struct {
	Name     string
	Contact  string
	Summary  string
	Sections []Section
}

type Section struct {
	Title string
	Lines []string
}

// FromResume builds preview input from structured data, keeping only the
// first few lines of each section.
func FromResume(d model.ResumeData, fallbackTitle string) Input {
	in := Input{
		Name:    firstNonEmpty(d.Contact.Name, fallbackTitle),
		Contact: joinNonEmpty(" · ", d.Contact.Email, d.Contact.Phone, d.Contact.Location),
		Summary: truncate(d.Summary, 320),
	}
	var exp []string
	for _, e := range d.Experience {
		exp = append(exp, joinNonEmpty(" — ", e.Title, e.Company))
		for _, b := range e.Bullets {
			exp = append(exp, "• "+truncate(b, 110))
		}
	}
	var edu []string
	for _, e := range d.Education {
		edu = append(edu, joinNonEmpty(", ", e.Degree, e.Institution))
	}
	for _, s := range []Section{
		{Title: "Experience", Lines: exp},
		{Title: "Education", Lines: edu},
		{Title: "Skills", Lines: []string{truncate(strings.Join(d.Skills, ", "), 160)}},
	} {
		s.Lines = compact(s.Lines)
		if len(s.Lines) == 0 {
			continue
		}
		if len(s.Lines) > maxLines {
			s.Lines = s.Lines[:maxLines]
		}
		in.Sections = append(in.Sections, s)
	}
	return in
}

// HTML renders the preview page.
func HTML(in Input, width int) (string, error) {
	var buf bytes.Buffer
	err := previewTemplate.Execute(&buf, struct {
		Input
		Width int
	}{Input: in, Width: width})
	return buf.String(), err
}

// ChromedpRenderer screenshots the preview page with headless Chrome.
type ChromedpRenderer struct {
	ChromePath string
	Width      int
	Height     int
	Timeout    time.Duration
}

func NewChromedpRenderer(chromePath string) *ChromedpRenderer {
	return &ChromedpRenderer{ChromePath: chromePath, Width: defaultWidth, Height: defaultHeight, Timeout: defaultTimeout}
}

func (r *ChromedpRenderer) Render(ctx context.Context, in Input) ([]byte, error) {
	width, height := r.Width, r.Height
	if width <= 0 {
		width = defaultWidth
	}
	if height <= 0 {
		height = defaultHeight
	}
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	page, err := HTML(in, width-64)
	if err != nil {
		return nil, err
	}
	tmpDir, err := os.MkdirTemp("", "resume-thumb-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(tmpDir)
	htmlPath := filepath.Join(tmpDir, "index.html")
	if err := os.WriteFile(htmlPath, []byte(page), 0o644); err != nil {
		return nil, err
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if r.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(r.ChromePath))
	}
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	cctx, cancelCtx := chromedp.NewContext(allocCtx)
	defer cancelCtx()
	runCtx, cancel := context.WithTimeout(cctx, timeout)
	defer cancel()

	var png []byte
	err = chromedp.Run(runCtx,
		emulation.SetDeviceMetricsOverride(int64(width), int64(height), 1, false),
		chromedp.Navigate("file://"+htmlPath),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.CaptureScreenshot(&png),
	)
	if err != nil {
		return nil, err
	}
	return png, nil
}

// Disabled is used when thumbnails are turned off.
type Disabled struct{}

func (Disabled) Render(context.Context, Input) ([]byte, error) { return nil, ErrDisabled }

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func joinNonEmpty(sep string, parts ...string) string {
	return strings.Join(compact(parts), sep)
}

func compact(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func truncate(s string, limit int) string {
	runes := []rune(strings.TrimSpace(s))
	if len(runes) <= limit {
		return string(runes)
	}
	return strings.TrimSpace(string(runes[:limit])) + "…"
}
