package analysis

import (
	"strings"

	"resume-tailor/resume/model"
)

// Input is everything one analysis round trip needs.
type Input struct {
	Resume         model.ResumeData
	ResumeText     string
	JobTitle       string
	Company        string
	JobDescription string
}

// text renders the structured resume. ResumeText is only used when the
// structured content is empty.
func (in Input) text() string {
	if !in.Resume.IsEmpty() {
		return BuildResumeText(in.Resume)
	}
	return strings.TrimSpace(in.ResumeText)
}

// BuildResumeText renders structured resume data as labeled plain-text
// sections. Empty sections are omitted.
func BuildResumeText(d model.ResumeData) string {
	var b strings.Builder
	section := func(label string, body string) {
		body = strings.TrimSpace(body)
		if body == "" {
			return
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(label)
		b.WriteString("\n")
		b.WriteString(body)
	}

	var contact []string
	for _, kv := range [][2]string{
		{"Name", d.Contact.Name},
		{"Email", d.Contact.Email},
		{"Phone", d.Contact.Phone},
		{"Location", d.Contact.Location},
		{"LinkedIn", d.Contact.LinkedIn},
		{"Website", d.Contact.Website},
	} {
		if v := strings.TrimSpace(kv[1]); v != "" {
			contact = append(contact, kv[0]+": "+v)
		}
	}
	section("CONTACT", strings.Join(contact, "\n"))
	section("SUMMARY", d.Summary)

	var exp []string
	for _, e := range d.Experience {
		var lines []string
		head := joinNonEmpty(" at ", e.Title, e.Company)
		if e.Location != "" {
			head += " (" + e.Location + ")"
		}
		if dates := dateRange(e.StartDate, e.EndDate, e.Current); dates != "" {
			head += " | " + dates
		}
		lines = append(lines, head)
		for _, bullet := range e.Bullets {
			lines = append(lines, "- "+bullet)
		}
		exp = append(exp, strings.Join(lines, "\n"))
	}
	section("EXPERIENCE", strings.Join(exp, "\n\n"))

	var edu []string
	for _, e := range d.Education {
		line := joinNonEmpty(", ", joinNonEmpty(" in ", e.Degree, e.Field), e.Institution)
		if e.Location != "" {
			line += " (" + e.Location + ")"
		}
		if dates := dateRange(e.StartDate, e.EndDate, false); dates != "" {
			line += " | " + dates
		}
		if e.GPA != "" {
			line += " | GPA " + e.GPA
		}
		edu = append(edu, line)
	}
	section("EDUCATION", strings.Join(edu, "\n"))
	section("SKILLS", strings.Join(d.Skills, ", "))
	return b.String()
}

func joinNonEmpty(sep string, parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}

func dateRange(start, end string, current bool) string {
	if current && end == "" {
		end = "Present"
	}
	return joinNonEmpty(" - ", start, end)
}
