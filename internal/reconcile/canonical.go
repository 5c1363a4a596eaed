package reconcile

// CanonicalResume is the fully normalized view of one parsed resume.
// Every field is always populated: sections are non-nil slices and
// ContactInfo carries empty-string defaults, so consumers never perform
// existence checks.
type CanonicalResume struct {
	ContactInfo ContactInfo       `json:"contactInfo"`
	Education   []EducationEntry  `json:"education"`
	Experience  []ExperienceEntry `json:"experience"`
	Skills      []SkillEntry      `json:"skills"`
	Projects    []ProjectEntry    `json:"projects"`
}

// ContactInfo is the normalized contact section.
type ContactInfo struct {
	FullName   string `json:"fullName"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	LinkedIn   string `json:"linkedin"`
}

// EducationEntry is one normalized education record.
type EducationEntry struct {
	ID           string `json:"id"`
	Institution  string `json:"institution"`
	Degree       string `json:"degree"`
	FieldOfStudy string `json:"fieldOfStudy"`
	Location     string `json:"location"`
	StartDate    string `json:"startDate"`
	EndDate      string `json:"endDate"`
	GPA          string `json:"gpa"`
	Description  string `json:"description"`
}

// ExperienceEntry is one normalized work-experience record.
type ExperienceEntry struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	Company          string   `json:"company"`
	Location         string   `json:"location"`
	StartDate        string   `json:"startDate"`
	EndDate          string   `json:"endDate"`
	Responsibilities []string `json:"responsibilities"`
}

// SkillEntry is one normalized skill record.
type SkillEntry struct {
	Name  string `json:"name"`
	Level string `json:"level"`
}

// ProjectEntry is one normalized project record.
type ProjectEntry struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
	URL          string   `json:"url"`
	StartDate    string   `json:"startDate"`
	EndDate      string   `json:"endDate"`
	Bullets      []string `json:"bullets"`
}

// Extract runs every section extractor over the record and assembles the
// canonical resume. A nil record yields a fully defaulted (empty) resume.
func Extract(record map[string]any) CanonicalResume {
	return CanonicalResume{
		ContactInfo: ExtractContactInfo(record),
		Education:   ExtractEducation(record),
		Experience:  ExtractExperience(record),
		Skills:      ExtractSkills(record),
		Projects:    ExtractProjects(record),
	}
}

// EmptyResume returns a canonical resume with every section defaulted.
// Used when no raw parse record exists for a user yet.
func EmptyResume() CanonicalResume {
	return CanonicalResume{
		Education:  []EducationEntry{},
		Experience: []ExperienceEntry{},
		Skills:     []SkillEntry{},
		Projects:   []ProjectEntry{},
	}
}
