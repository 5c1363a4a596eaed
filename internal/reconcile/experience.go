package reconcile

import (
	"fmt"
	"sort"
	"strings"
)

var experiencePaths = []Path{
	"Work Experience",
	"work experience",
	"work_experience",
	"workExperience",
	"work_experiences",
	"data.work_experience",
	"experience",
	"experiences",
	"professional_experience",
	"employment_history",
	"employmentHistory",
	"jobs",
	"positions",
}

// ExtractExperience returns the normalized work-experience entries found in
// the record. When no candidate path matches, it falls back to scanning the
// record for any array whose items look like job entries, since some parser
// runs emit the section under ad-hoc keys.
func ExtractExperience(record map[string]any) []ExperienceEntry {
	val, ok := Resolve(record, experiencePaths, KindAny)
	items := sectionItems(val)
	if !ok || len(items) == 0 {
		items = scanForJobItems(record)
	}
	out := make([]ExperienceEntry, 0, len(items))
	for i, item := range items {
		out = append(out, normalizeExperience(item, i))
	}
	return out
}

func normalizeExperience(item map[string]any, index int) ExperienceEntry {
	entry := ExperienceEntry{
		ID:       fallbackString(itemString(item, "id"), fmt.Sprintf("exp-%d", index)),
		Title:    itemString(item, "jobTitle", "Job Title", "title", "position"),
		Company:  itemString(item, "company", "Company", "employer", "organization"),
		Location: itemString(item, "location", "Location"),
	}
	entry.StartDate, entry.EndDate = experienceDates(item)
	entry.Responsibilities = experienceResponsibilities(item)
	return entry
}

func experienceDates(item map[string]any) (start, end string) {
	if dates, ok := item["dates"].(map[string]any); ok {
		start = fallbackString(flexString(dates["startDate"]), flexString(dates["start_date"]))
		end = fallbackString(flexString(dates["endDate"]), flexString(dates["end_date"]))
		if end == "" {
			if current, ok := dates["isCurrent"].(bool); ok && current {
				end = "Present"
			}
		}
		return start, end
	}
	start = fallbackString(flexString(item["startDate"]), flexString(item["start_date"]))
	end = fallbackString(flexString(item["endDate"]), flexString(item["end_date"]))
	if start == "" && end == "" {
		// LLM extractor emits a combined "Start/End Year" value.
		if combined := itemString(item, "Start/End Year"); combined != "" {
			parts := strings.SplitN(combined, "-", 2)
			start = strings.TrimSpace(parts[0])
			if len(parts) == 2 {
				end = strings.TrimSpace(parts[1])
			}
		}
	}
	if end == "" {
		if current, ok := item["isCurrent"].(bool); ok && current {
			end = "Present"
		}
	}
	return start, end
}

func experienceResponsibilities(item map[string]any) []string {
	if resp := itemStringSlice(item, "responsibilities", "Description", "description", "bullets"); len(resp) > 0 {
		return resp
	}
	// Free-text descriptions split into bullet lines.
	text := itemString(item, "description", "Description", "jobDescription", "text")
	if text == "" {
		return []string{}
	}
	lines := strings.FieldsFunc(text, func(r rune) bool {
		return r == '\n' || r == '•'
	})
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// scanForJobItems looks for any top-level array whose first item exposes a
// job-shaped field. Last-resort fallback when the section key is unknown.
// Keys are visited in sorted order so repeated extraction is deterministic.
func scanForJobItems(record map[string]any) []map[string]any {
	keys := make([]string, 0, len(record))
	for key := range record {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		items := sectionItems(record[key])
		if len(items) == 0 {
			continue
		}
		first := items[0]
		if itemString(first, "jobTitle", "Job Title", "position", "employer", "company", "Company") != "" {
			return items
		}
	}
	return nil
}
