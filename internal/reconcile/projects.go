package reconcile

import "fmt"

var projectPaths = []Path{
	"Projects",
	"projects",
	"data.projects",
	"personal_projects",
	"portfolio",
}

// ExtractProjects returns the normalized project entries found in the record.
func ExtractProjects(record map[string]any) []ProjectEntry {
	val, ok := Resolve(record, projectPaths, KindAny)
	if !ok {
		return []ProjectEntry{}
	}
	items := sectionItems(val)
	out := make([]ProjectEntry, 0, len(items))
	for i, item := range items {
		out = append(out, normalizeProject(item, i))
	}
	return out
}

func normalizeProject(item map[string]any, index int) ProjectEntry {
	return ProjectEntry{
		ID:           fallbackString(itemString(item, "id"), fmt.Sprintf("project-%d", index)),
		Title:        itemString(item, "title", "Title", "name", "Name", "projectName"),
		Description:  itemString(item, "description", "Description", "summary"),
		Technologies: itemStringSlice(item, "technologies", "Technologies", "tech", "stack", "tools"),
		URL:          itemString(item, "url", "URL", "link", "repository"),
		StartDate:    fallbackString(flexString(item["startDate"]), flexString(item["start_date"])),
		EndDate:      fallbackString(flexString(item["endDate"]), flexString(item["end_date"])),
		Bullets:      itemStringSlice(item, "bullets", "Bullets", "highlights"),
	}
}
