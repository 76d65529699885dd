package parse

import (
	"context"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"resume-tailor/resume/model"
)

type section int

const (
	sectionHeader section = iota
	sectionSummary
	sectionExperience
	sectionEducation
	sectionSkills
	sectionOther
)

var sectionAliases = map[string]section{
	"OBJECTIVE":               sectionSummary,
	"CAREER OBJECTIVE":        sectionSummary,
	"SUMMARY":                 sectionSummary,
	"PROFESSIONAL SUMMARY":    sectionSummary,
	"PROFILE":                 sectionSummary,
	"ABOUT ME":                sectionSummary,
	"EXPERIENCE":              sectionExperience,
	"WORK EXPERIENCE":         sectionExperience,
	"PROFESSIONAL EXPERIENCE": sectionExperience,
	"EMPLOYMENT":              sectionExperience,
	"EMPLOYMENT HISTORY":      sectionExperience,
	"WORK HISTORY":            sectionExperience,
	"EDUCATION":               sectionEducation,
	"ACADEMIC BACKGROUND":     sectionEducation,
	"SKILLS":                  sectionSkills,
	"TECHNICAL SKILLS":        sectionSkills,
	"CORE COMPETENCIES":       sectionSkills,
	"PROJECTS":                sectionOther,
	"CERTIFICATIONS":          sectionOther,
	"AWARDS":                  sectionOther,
	"REFERENCES":              sectionOther,
	"VOLUNTEER EXPERIENCE":    sectionOther,
	"LANGUAGES":               sectionOther,
}

const monthPattern = `(?:jan|feb|mar|apr|may|jun|jul|aug|sep|sept|oct|nov|dec)[a-z]*\.?`

var (
	emailRe    = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	phoneRe    = regexp.MustCompile(`(?:\+?1[\s.\-]?)?(?:\(\d{3}\)|\d{3})[\s.\-]?\d{3}[\s.\-]\d{4}`)
	linkedInRe = regexp.MustCompile(`(?i)(?:https?://)?(?:[a-z]{2,3}\.)?linkedin\.com/in/[A-Za-z0-9_\-%]+/?`)
	urlRe      = regexp.MustCompile(`(?i)(?:https?://|www\.)[^\s|,;]+`)
	locationRe = regexp.MustCompile(`\b([A-Z][A-Za-z.' ]{1,40},\s*[A-Z]{2})\b`)
	dateRe     = `(?:` + monthPattern + `\s+\d{4}|\d{1,2}/\d{4}|\d{4})`
	rangeRe    = regexp.MustCompile(`(?i)(` + dateRe + `)\s*(?:-|–|—|to)\s*(` + dateRe + `|present|current|now)`)
	yearRe     = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	degreeRe   = regexp.MustCompile(`(?i)\b(bachelor|master|associate|doctor|diploma|certificate|b\.?s\.?c?|b\.?a\.?|m\.?s\.?c?|m\.?a\.?|mba|ph\.?d\.?|b\.?eng|m\.?eng)\b`)
	gpaRe      = regexp.MustCompile(`(?i)\bgpa\b[:\s]*([0-4](?:\.\d{1,2})?)`)
	skillSepRe = regexp.MustCompile(`[,|;•·▪]`)
)

// RuleParser is the deterministic fallback: regular expressions for contact
// fields and header-driven section splitting.
type RuleParser struct{}

func (RuleParser) Parse(ctx context.Context, text string) (model.ResumeData, error) {
	if err := ctx.Err(); err != nil {
		return model.ResumeData{}, err
	}
	sections := splitSections(text)

	data := model.ResumeData{
		Contact:    parseContact(text, sections[sectionHeader]),
		Summary:    joinParagraph(sections[sectionSummary]),
		Experience: parseExperience(sections[sectionExperience]),
		Education:  parseEducation(sections[sectionEducation]),
		Skills:     parseSkills(sections[sectionSkills]),
	}
	return data.Normalize(), nil
}

func splitSections(text string) map[section][]string {
	out := map[section][]string{}
	current := sectionHeader
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if s, ok := headerSection(trimmed); ok {
			current = s
			continue
		}
		out[current] = append(out[current], trimmed)
	}
	return out
}

func headerSection(line string) (section, bool) {
	if line == "" || len(line) > 40 {
		return 0, false
	}
	key := strings.ToUpper(strings.TrimRight(line, ": "))
	key = strings.Join(strings.Fields(key), " ")
	s, ok := sectionAliases[key]
	return s, ok
}

func parseContact(full string, header []string) model.Contact {
	c := model.Contact{
		Email: emailRe.FindString(full),
		Phone: strings.TrimSpace(phoneRe.FindString(full)),
	}
	if li := linkedInRe.FindString(full); li != "" {
		c.LinkedIn = ensureScheme(li)
	}
	for _, u := range urlRe.FindAllString(strings.Join(header, "\n"), -1) {
		if strings.Contains(strings.ToLower(u), "linkedin.com") {
			continue
		}
		c.Website = ensureScheme(strings.TrimRight(u, ".)"))
		break
	}
	c.Name = findName(header)
	for _, line := range header {
		if strings.Contains(line, "@") {
			line = emailRe.ReplaceAllString(line, "")
		}
		if m := locationRe.FindStringSubmatch(line); m != nil {
			c.Location = strings.TrimSpace(m[1])
			break
		}
	}
	return c
}

func findName(header []string) string {
	checked := 0
	for _, line := range header {
		if line == "" {
			continue
		}
		checked++
		if checked > 5 {
			break
		}
		if looksLikeName(line) {
			return line
		}
	}
	return ""
}

func looksLikeName(line string) bool {
	if len(line) > 50 || strings.ContainsAny(line, "@/:|") {
		return false
	}
	words := strings.Fields(line)
	if len(words) < 2 || len(words) > 4 {
		return false
	}
	for _, w := range words {
		first := []rune(w)[0]
		if !unicode.IsUpper(first) {
			return false
		}
		for _, r := range w {
			if unicode.IsDigit(r) {
				return false
			}
		}
	}
	return true
}

func ensureScheme(u string) string {
	if strings.HasPrefix(strings.ToLower(u), "http://") || strings.HasPrefix(strings.ToLower(u), "https://") {
		return u
	}
	return "https://" + u
}

func joinParagraph(lines []string) string {
	parts := make([]string, 0, len(lines))
	for _, l := range lines {
		if l != "" {
			parts = append(parts, l)
		}
	}
	return strings.Join(parts, " ")
}

// blocks splits section lines into entries on blank lines, and also when a
// non-bullet line that is not a wrapped continuation follows bullets.
func blocks(lines []string) [][]string {
	var out [][]string
	var cur []string
	sawBullet := false
	flush := func() {
		if len(cur) > 0 {
			out = append(out, cur)
		}
		cur = nil
		sawBullet = false
	}
	for _, line := range lines {
		if line == "" {
			flush()
			continue
		}
		_, bullet := stripBullet(line)
		if !bullet && sawBullet && (rangeRe.MatchString(line) || startsUpper(line)) {
			flush()
		}
		if bullet {
			sawBullet = true
		}
		cur = append(cur, line)
	}
	flush()
	return out
}

func startsUpper(line string) bool {
	r, _ := utf8.DecodeRuneInString(line)
	return unicode.IsUpper(r) || unicode.IsDigit(r)
}

func stripBullet(line string) (string, bool) {
	for _, prefix := range []string{"•", "-", "*", "▪", "◦", "·", "‣", "–"} {
		if strings.HasPrefix(line, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(line, prefix)), true
		}
	}
	return line, false
}

func parseExperience(lines []string) []model.Experience {
	var out []model.Experience
	for _, block := range blocks(lines) {
		var e model.Experience
		var headers []string
		for _, line := range block {
			text, bullet := stripBullet(line)
			if bullet || len(headers) >= 2 {
				e.Bullets = append(e.Bullets, text)
				continue
			}
			if m := rangeRe.FindStringSubmatch(text); m != nil && e.StartDate == "" {
				e.StartDate = strings.TrimSpace(m[1])
				e.EndDate = strings.TrimSpace(m[2])
				text = strings.TrimSpace(rangeRe.ReplaceAllString(text, ""))
				text = strings.Trim(text, " ,|–—-()")
				if text == "" {
					continue
				}
			}
			headers = append(headers, text)
		}
		if isCurrent(e.EndDate) {
			e.Current = true
			e.EndDate = "Present"
		}
		if len(headers) > 0 {
			e.Title, e.Company = splitPair(headers[0])
		}
		if len(headers) > 1 {
			if e.Company == "" {
				e.Company, e.Location = splitPair(headers[1])
			} else {
				e.Location = headers[1]
			}
		}
		out = append(out, e)
	}
	return out
}

func isCurrent(end string) bool {
	switch strings.ToLower(strings.TrimSpace(end)) {
	case "present", "current", "now":
		return true
	}
	return false
}

// splitPair splits "Title at Company", "Title | Company", "Title, Company"
// and dash-separated forms.
func splitPair(line string) (string, string) {
	for _, sep := range []string{" at ", " | ", " — ", " – ", " - ", ", "} {
		if idx := strings.Index(line, sep); idx > 0 {
			return strings.TrimSpace(line[:idx]), strings.TrimSpace(line[idx+len(sep):])
		}
	}
	return strings.TrimSpace(line), ""
}

func parseEducation(lines []string) []model.Education {
	var out []model.Education
	for _, block := range blocks(lines) {
		var e model.Education
		for _, line := range block {
			text, _ := stripBullet(line)
			if m := gpaRe.FindStringSubmatch(text); m != nil {
				e.GPA = m[1]
				text = strings.TrimSpace(gpaRe.ReplaceAllString(text, ""))
			}
			if m := rangeRe.FindStringSubmatch(text); m != nil {
				e.StartDate = strings.TrimSpace(m[1])
				e.EndDate = strings.TrimSpace(m[2])
				text = strings.TrimSpace(rangeRe.ReplaceAllString(text, ""))
			} else if years := yearRe.FindAllString(text, -1); len(years) == 1 && e.EndDate == "" {
				e.EndDate = years[0]
				text = strings.TrimSpace(yearRe.ReplaceAllString(text, ""))
			}
			text = strings.Trim(text, " ,|–—-()")
			if text == "" {
				continue
			}
			switch {
			case e.Degree == "" && degreeRe.MatchString(text):
				e.Degree, e.Field = splitDegree(text)
			case e.Institution == "":
				e.Institution, e.Location = splitInstitution(text)
			}
		}
		out = append(out, e)
	}
	return out
}

func splitDegree(line string) (string, string) {
	for _, sep := range []string{" in ", ", "} {
		if idx := strings.Index(line, sep); idx > 0 {
			return strings.TrimSpace(line[:idx]), strings.TrimSpace(line[idx+len(sep):])
		}
	}
	return line, ""
}

func splitInstitution(line string) (string, string) {
	for _, sep := range []string{" | ", " — ", " – ", " - "} {
		if idx := strings.Index(line, sep); idx > 0 {
			return strings.TrimSpace(line[:idx]), strings.TrimSpace(line[idx+len(sep):])
		}
	}
	if m := locationRe.FindStringSubmatchIndex(line); m != nil && m[2] > 0 {
		inst := strings.Trim(strings.TrimSpace(line[:m[2]]), ",")
		if inst != "" {
			return inst, strings.TrimSpace(line[m[2]:m[3]])
		}
	}
	return line, ""
}

func parseSkills(lines []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, line := range lines {
		text, _ := stripBullet(line)
		if idx := strings.Index(text, ":"); idx > 0 && idx < 30 {
			text = text[idx+1:]
		}
		for _, item := range skillSepRe.Split(text, -1) {
			item = strings.TrimSpace(item)
			if item == "" || len([]rune(item)) > 50 {
				continue
			}
			key := strings.ToLower(item)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, item)
		}
	}
	return out
}
