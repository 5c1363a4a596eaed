package reconcile

import (
	"fmt"
	"strings"
)

// educationPaths is the ordered candidate-path table for the education
// section. Title-Case keys come from the LLM extractor, snake_case and
// nested variants from third-party parser output.
var educationPaths = []Path{
	"Education",
	"education",
	"educations",
	"educational_background",
	"data.education",
	"schools",
	"degrees",
	"qualifications",
}

// ExtractEducation returns the normalized education entries found in the
// record. The result is never nil and every entry has all canonical
// attributes populated, falling back to empty defaults.
func ExtractEducation(record map[string]any) []EducationEntry {
	val, ok := Resolve(record, educationPaths, KindAny)
	if !ok {
		return []EducationEntry{}
	}
	items := sectionItems(val)
	out := make([]EducationEntry, 0, len(items))
	for i, item := range items {
		out = append(out, normalizeEducation(item, i))
	}
	return out
}

func normalizeEducation(item map[string]any, index int) EducationEntry {
	entry := EducationEntry{
		ID:           fallbackString(itemString(item, "id"), fmt.Sprintf("edu-%d", index)),
		Institution:  itemString(item, "institution", "Institution", "school", "School", "name", "organization"),
		Degree:       itemString(item, "degree", "Degree", "studyType", "qualification"),
		FieldOfStudy: itemString(item, "fieldOfStudy", "area", "major", "field_of_study"),
		GPA:          educationGPA(item),
		Description:  itemString(item, "description", "summary", "notes"),
	}
	entry.StartDate, entry.EndDate = educationDates(item)

	// Third-party parser combines degree and field ("BS in Biology") under
	// accreditation; split on " in " when possible.
	if acc := accreditationString(item); acc != "" {
		degree, field := splitAccreditation(acc)
		if entry.Degree == "" {
			entry.Degree = degree
		}
		if entry.FieldOfStudy == "" {
			entry.FieldOfStudy = field
		}
	}

	entry.Location = educationLocation(item)
	return entry
}

func accreditationString(item map[string]any) string {
	switch acc := item["accreditation"].(type) {
	case string:
		return strings.TrimSpace(acc)
	case map[string]any:
		if s, ok := acc["education"].(string); ok {
			return strings.TrimSpace(s)
		}
		if s, ok := acc["inputStr"].(string); ok {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

func splitAccreditation(acc string) (degree, field string) {
	parts := strings.SplitN(acc, " in ", 2)
	if len(parts) == 2 {
		return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	}
	return acc, ""
}

func educationDates(item map[string]any) (start, end string) {
	if dates, ok := item["dates"].(map[string]any); ok {
		start = flexString(dates["startDate"])
		end = flexString(dates["completionDate"])
		if end == "" {
			end = flexString(dates["endDate"])
		}
		return start, end
	}
	start = flexString(item["startDate"])
	if start == "" {
		start = flexString(item["start_date"])
	}
	end = flexString(item["endDate"])
	if end == "" {
		end = flexString(item["end_date"])
	}
	if start == "" && end == "" {
		// Single "year"/"date" fields land in endDate: they usually mark
		// graduation.
		end = fallbackString(flexString(item["year"]), flexString(item["Year"]))
		if end == "" {
			end = flexString(item["date"])
		}
	}
	return start, end
}

func educationLocation(item map[string]any) string {
	switch loc := item["location"].(type) {
	case string:
		return strings.TrimSpace(loc)
	case map[string]any:
		if s, ok := loc["formatted"].(string); ok && s != "" {
			return strings.TrimSpace(s)
		}
		if s, ok := loc["rawInput"].(string); ok {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

func educationGPA(item map[string]any) string {
	if gpa := flexString(item["gpa"]); gpa != "" {
		return gpa
	}
	return flexString(item["grade"])
}
