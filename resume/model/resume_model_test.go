package model

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestNormalizeFillsEmptySlices(t *testing.T) {
	got := ResumeData{}.Normalize()
	raw, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, want := range []string{`"experience":[]`, `"education":[]`, `"skills":[]`} {
		if !strings.Contains(string(raw), want) {
			t.Fatalf("expected %s in %s", want, raw)
		}
	}
	if !got.IsEmpty() {
		t.Fatalf("expected empty data")
	}
}

func TestNormalizeDropsBlankEntries(t *testing.T) {
	in := ResumeData{
		Contact: Contact{Name: "  Jane Doe "},
		Experience: []Experience{
			{Title: " Engineer ", Bullets: []string{" shipped ", "", "  "}},
			{},
		},
		Education: []Education{{}, {Institution: "State University"}},
		Skills:    []string{"Go", " ", "SQL "},
	}
	got := in.Normalize()
	if got.Contact.Name != "Jane Doe" {
		t.Fatalf("unexpected name %q", got.Contact.Name)
	}
	if len(got.Experience) != 1 || len(got.Experience[0].Bullets) != 1 || got.Experience[0].Bullets[0] != "shipped" {
		t.Fatalf("unexpected experience %+v", got.Experience)
	}
	if len(got.Education) != 1 {
		t.Fatalf("unexpected education %+v", got.Education)
	}
	if strings.Join(got.Skills, ",") != "Go,SQL" {
		t.Fatalf("unexpected skills %v", got.Skills)
	}
}

func TestValidate(t *testing.T) {
	ok := ResumeData{Contact: Contact{Name: "A", Email: "a@b.co", LinkedIn: "https://linkedin.com/in/a"}}
	if err := ok.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bad := []ResumeData{
		{Contact: Contact{Email: "nope"}},
		{Contact: Contact{LinkedIn: "linkedin.com/in/a"}},
		{Experience: []Experience{{Bullets: []string{"x"}}}},
		{Education: []Education{{GPA: "3.9"}}},
	}
	for i, d := range bad {
		if err := d.Validate(); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
}
