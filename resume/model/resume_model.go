package model

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ResumeData is the structured resume shared by parsing, editing, analysis
// and tailoring.
type ResumeData struct {
	Contact    Contact      `json:"contact"`
	Summary    string       `json:"summary"`
	Experience []Experience `json:"experience"`
	Education  []Education  `json:"education"`
	Skills     []string     `json:"skills"`
}

// Contact captures top-of-resume identity details.
type Contact struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
	LinkedIn string `json:"linkedin"`
	Website  string `json:"website"`
}

// Experience is one work history entry.
type Experience struct {
	Title     string   `json:"title"`
	Company   string   `json:"company"`
	Location  string   `json:"location"`
	StartDate string   `json:"startDate"`
	EndDate   string   `json:"endDate"`
	Current   bool     `json:"current"`
	Bullets   []string `json:"bullets"`
}

// Education is one education entry.
type Education struct {
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Field       string `json:"field"`
	Location    string `json:"location"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	GPA         string `json:"gpa"`
}

// Normalize trims whitespace, drops blank list items and replaces nil slices
// with empty ones so the JSON shape is always complete.
func (d ResumeData) Normalize() ResumeData {
	out := ResumeData{
		Contact: Contact{
			Name:     strings.TrimSpace(d.Contact.Name),
			Email:    strings.TrimSpace(d.Contact.Email),
			Phone:    strings.TrimSpace(d.Contact.Phone),
			Location: strings.TrimSpace(d.Contact.Location),
			LinkedIn: strings.TrimSpace(d.Contact.LinkedIn),
			Website:  strings.TrimSpace(d.Contact.Website),
		},
		Summary:    strings.TrimSpace(d.Summary),
		Experience: make([]Experience, 0, len(d.Experience)),
		Education:  make([]Education, 0, len(d.Education)),
		Skills:     compact(d.Skills),
	}
	for _, e := range d.Experience {
		e.Title = strings.TrimSpace(e.Title)
		e.Company = strings.TrimSpace(e.Company)
		e.Location = strings.TrimSpace(e.Location)
		e.StartDate = strings.TrimSpace(e.StartDate)
		e.EndDate = strings.TrimSpace(e.EndDate)
		e.Bullets = compact(e.Bullets)
		if e.Title == "" && e.Company == "" && len(e.Bullets) == 0 {
			continue
		}
		out.Experience = append(out.Experience, e)
	}
	for _, e := range d.Education {
		e.Institution = strings.TrimSpace(e.Institution)
		e.Degree = strings.TrimSpace(e.Degree)
		e.Field = strings.TrimSpace(e.Field)
		e.Location = strings.TrimSpace(e.Location)
		e.StartDate = strings.TrimSpace(e.StartDate)
		e.EndDate = strings.TrimSpace(e.EndDate)
		e.GPA = strings.TrimSpace(e.GPA)
		if e.Institution == "" && e.Degree == "" {
			continue
		}
		out.Education = append(out.Education, e)
	}
	return out
}

// IsEmpty reports whether no field carries content.
func (d ResumeData) IsEmpty() bool {
	return d.Contact == (Contact{}) && d.Summary == "" && len(d.Experience) == 0 &&
		len(d.Education) == 0 && len(d.Skills) == 0
}

// Validate enforces the rules applied when a user saves edited content.
func (d ResumeData) Validate() error {
	if len(d.Contact.Name) > 200 {
		return errors.New("contact.name is too long")
	}
	if d.Contact.Email != "" && !strings.Contains(d.Contact.Email, "@") {
		return errors.New("contact.email must be an email address")
	}
	if d.Contact.LinkedIn != "" && !isFullURL(d.Contact.LinkedIn) {
		return errors.New("contact.linkedin must be a full URL")
	}
	if d.Contact.Website != "" && !isFullURL(d.Contact.Website) {
		return errors.New("contact.website must be a full URL")
	}
	for i, e := range d.Experience {
		if strings.TrimSpace(e.Title) == "" && strings.TrimSpace(e.Company) == "" {
			return fmt.Errorf("experience[%d] needs a title or company", i)
		}
	}
	for i, e := range d.Education {
		if strings.TrimSpace(e.Institution) == "" && strings.TrimSpace(e.Degree) == "" {
			return fmt.Errorf("education[%d] needs an institution or degree", i)
		}
	}
	return nil
}

func compact(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := strings.TrimSpace(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func isFullURL(value string) bool {
	parsed, err := url.Parse(strings.TrimSpace(value))
	if err != nil {
		return false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}
	return parsed.Host != ""
}
