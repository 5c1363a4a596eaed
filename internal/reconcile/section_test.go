package reconcile

import (
	"reflect"
	"testing"
)

func TestSetSectionWinsOverUpstreamAliases(t *testing.T) {
	record := map[string]any{
		"Skills":    []any{"Old"},
		"Full Name": "Ada Lovelace",
	}

	SetSection(record, SectionSkills, []SkillEntry{{Name: "Go", Level: "expert"}})

	got := ExtractSkills(record)
	want := []SkillEntry{{Name: "Go", Level: "expert"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v want %#v", got, want)
	}
	// Unrelated keys survive.
	if info := ExtractContactInfo(record); info.FullName != "Ada Lovelace" {
		t.Fatalf("unrelated key lost: %#v", info)
	}
}

func TestSetSectionRemovesNestedAlias(t *testing.T) {
	record := map[string]any{
		"data": map[string]any{
			"education": []any{map[string]any{"institution": "Old U"}},
			"other":     "kept",
		},
	}

	SetSection(record, SectionEducation, []EducationEntry{{ID: "edu-1", Institution: "New U"}})

	entries := ExtractEducation(record)
	if len(entries) != 1 || entries[0].Institution != "New U" {
		t.Fatalf("unexpected entries: %#v", entries)
	}
	data := record["data"].(map[string]any)
	if data["other"] != "kept" {
		t.Fatalf("sibling nested key lost: %#v", data)
	}
}

func TestSetSectionContactInfoRoundTrip(t *testing.T) {
	record := map[string]any{
		"Full Name": "Old Name",
		"address":   map[string]any{"city": "Old City"},
		"Skills":    []any{"Go"},
	}

	SetSection(record, SectionContactInfo, ContactInfo{
		FullName:  "Ada Lovelace",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		City:      "London",
	})

	info := ExtractContactInfo(record)
	if info.FullName != "Ada Lovelace" || info.City != "London" || info.Email != "ada@example.com" {
		t.Fatalf("unexpected contact info: %#v", info)
	}
	if len(ExtractSkills(record)) != 1 {
		t.Fatalf("unrelated section lost")
	}
}

func TestParseSection(t *testing.T) {
	for _, name := range []string{"education", "experience", "skills", "projects", "contact-info", " Skills "} {
		if _, ok := ParseSection(name); !ok {
			t.Fatalf("expected %q to parse", name)
		}
	}
	if _, ok := ParseSection("summary"); ok {
		t.Fatalf("expected unknown section to be rejected")
	}
}
