package reconcile

import "sort"

var skillPaths = []Path{
	"Skills",
	"skills",
	"data.skills",
	"skillset",
	"technical_skills",
	"professional_skills",
	"core_competencies",
}

// ExtractSkills returns the normalized skill entries found in the record.
// Upstream shapes vary the most here: a plain list of strings, a list of
// {name, level} objects, or a map of category name to skill list
// ("Technical Skills": {"Databases": [...]}).
func ExtractSkills(record map[string]any) []SkillEntry {
	val, ok := Resolve(record, skillPaths, KindAny)
	if !ok {
		return []SkillEntry{}
	}
	switch v := val.(type) {
	case []any:
		return skillsFromList(v)
	case []string:
		out := make([]SkillEntry, 0, len(v))
		for _, name := range v {
			out = append(out, SkillEntry{Name: name})
		}
		return out
	case map[string]any:
		return skillsFromCategories(v)
	default:
		return []SkillEntry{}
	}
}

func skillsFromList(items []any) []SkillEntry {
	out := make([]SkillEntry, 0, len(items))
	for _, item := range items {
		switch s := item.(type) {
		case string:
			if s != "" {
				out = append(out, SkillEntry{Name: s})
			}
		case map[string]any:
			name := itemString(s, "name", "Name", "skill", "title")
			if name == "" {
				continue
			}
			out = append(out, SkillEntry{
				Name:  name,
				Level: itemString(s, "level", "Level", "proficiency"),
			})
		}
	}
	return out
}

func skillsFromCategories(categories map[string]any) []SkillEntry {
	names := make([]string, 0, len(categories))
	for category := range categories {
		names = append(names, category)
	}
	sort.Strings(names)
	out := []SkillEntry{}
	for _, category := range names {
		for _, name := range toStringSlice(categories[category]) {
			out = append(out, SkillEntry{Name: name})
		}
	}
	return out
}
