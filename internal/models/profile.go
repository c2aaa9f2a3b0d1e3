package models

// ProfileRecord represents the data scraped from one LinkedIn profile page
type ProfileRecord struct {
	Name        string            `json:"name"`
	Bio         string            `json:"bio"`
	Experiences []ExperienceEntry `json:"experiences"`
	Education   []EducationEntry  `json:"education,omitempty"`
	Skills      []string          `json:"skills,omitempty"`
}

// ExperienceEntry represents one item of the profile's experience list
type ExperienceEntry struct {
	Company     string `json:"company"`
	Designation string `json:"designation"`
	Duration    string `json:"duration"`
	Detail      string `json:"detail"`
}

// EducationEntry represents one item of the profile's education section
type EducationEntry struct {
	Degree   string `json:"degree"`
	School   string `json:"school"`
	Duration string `json:"duration"`
}
