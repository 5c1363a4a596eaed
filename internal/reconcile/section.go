package reconcile

import (
	"encoding/json"
	"strings"
)

// Section names the replaceable parts of a canonical resume.
type Section string

const (
	SectionEducation   Section = "education"
	SectionExperience  Section = "experience"
	SectionSkills      Section = "skills"
	SectionProjects    Section = "projects"
	SectionContactInfo Section = "contact-info"
)

// ParseSection validates a section name from an external caller.
func ParseSection(name string) (Section, bool) {
	switch Section(strings.ToLower(strings.TrimSpace(name))) {
	case SectionEducation:
		return SectionEducation, true
	case SectionExperience:
		return SectionExperience, true
	case SectionSkills:
		return SectionSkills, true
	case SectionProjects:
		return SectionProjects, true
	case SectionContactInfo:
		return SectionContactInfo, true
	}
	return "", false
}

// SetSection writes a canonical section value into a raw record, leaving all
// other keys untouched. Competing upstream keys for the same section are
// removed first so that a later Extract resolves the written value instead of
// a higher-priority alias left over from parsing.
//
// value must be the section's canonical type: []EducationEntry,
// []ExperienceEntry, []SkillEntry, []ProjectEntry or ContactInfo.
func SetSection(record map[string]any, section Section, value any) {
	if record == nil {
		return
	}
	switch section {
	case SectionEducation:
		deletePaths(record, educationPaths)
		record["education"] = toRawValue(value)
	case SectionExperience:
		deletePaths(record, experiencePaths)
		record["experience"] = toRawValue(value)
	case SectionSkills:
		deletePaths(record, skillPaths)
		record["skills"] = toRawValue(value)
	case SectionProjects:
		deletePaths(record, projectPaths)
		record["projects"] = toRawValue(value)
	case SectionContactInfo:
		info, ok := value.(ContactInfo)
		if !ok {
			return
		}
		setContactInfo(record, info)
	}
}

func setContactInfo(record map[string]any, info ContactInfo) {
	for _, paths := range [][]Path{
		contactNamePaths, contactEmailPaths, contactPhonePaths,
		contactLinkedInPaths, contactAddressPaths, contactCityPaths,
		contactStatePaths, contactZipPaths, contactCountryPaths,
		{"firstName", "First Name", "lastName", "Last Name"},
	} {
		deletePaths(record, paths)
	}
	record["fullName"] = info.FullName
	record["firstName"] = info.FirstName
	record["lastName"] = info.LastName
	record["email"] = info.Email
	record["phone"] = info.Phone
	record["address"] = info.Address
	record["city"] = info.City
	record["state"] = info.State
	record["postalCode"] = info.PostalCode
	record["country"] = info.Country
	record["linkedin"] = info.LinkedIn
}

// toRawValue round-trips a typed section slice through JSON so the record
// holds the same loose map[string]any shapes the decoder produces.
func toRawValue(value any) any {
	data, err := json.Marshal(value)
	if err != nil {
		return value
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return value
	}
	return out
}

func deletePaths(record map[string]any, paths []Path) {
	for _, p := range paths {
		key := string(p)
		if _, ok := record[key]; ok {
			delete(record, key)
			continue
		}
		segs := strings.Split(key, ".")
		if len(segs) < 2 {
			continue
		}
		parent := record
		for _, seg := range segs[:len(segs)-1] {
			next, ok := parent[seg].(map[string]any)
			if !ok {
				parent = nil
				break
			}
			parent = next
		}
		if parent != nil {
			delete(parent, segs[len(segs)-1])
		}
	}
}
