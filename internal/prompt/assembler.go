package prompt

import (
	"fmt"
	"strings"

	"interview-dashboard/internal/logger"
	"interview-dashboard/internal/models"
)

// Template markers, matched literally
const (
	CandidateMarker = "Client data=  \n`\n`"
	JobTitleMarker  = "Job Title= \n`\n`"
)

const (
	maxSkills    = 10
	notAvailable = "N/A"
	noExperience = "No work experience found."
)

// Assembler injects scraped profile data into an interview prompt template
type Assembler struct {
	template string
}

// NewAssembler creates an Assembler for the given template
func NewAssembler(template string) *Assembler {
	return &Assembler{template: template}
}

// Assemble replaces the candidate and job title markers. A marker missing from the
// template is skipped; the template is returned unchanged if rendering fails.
func (a *Assembler) Assemble(record *models.ProfileRecord, jobTitle string) (out string) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Failed to format profile data", "panic", r)
			out = a.template
		}
	}()

	if record == nil {
		logger.Error("Failed to format profile data", "error", "nil profile record")
		return a.template
	}

	block := RenderCandidate(record)

	out = strings.Replace(a.template, CandidateMarker, "Client data=  \n`"+block+"\n`", 1)
	out = strings.Replace(out, JobTitleMarker, "Job Title= \n`"+jobTitle+"\n`", 1)

	return out
}

// RenderCandidate renders the candidate profile block placed into the template
func RenderCandidate(record *models.ProfileRecord) string {
	var b strings.Builder

	b.WriteString("\nCANDIDATE PROFILE:\n==================\n")
	fmt.Fprintf(&b, "Name: %s\n\n", orDefault(record.Name, "Name not found"))
	fmt.Fprintf(&b, "Bio/Summary: %s\n\n", orDefault(record.Bio, "Bio not found"))
	b.WriteString("Work Experience:\n")

	if len(record.Experiences) == 0 {
		b.WriteString("\n" + noExperience + "\n")
	}
	for i, exp := range record.Experiences {
		fmt.Fprintf(&b, "\n%d. %s at %s\n", i+1, orNA(exp.Designation), orNA(exp.Company))
		fmt.Fprintf(&b, "   Duration: %s\n", orNA(exp.Duration))
		fmt.Fprintf(&b, "   Details: %s\n", orNA(exp.Detail))
	}

	if len(record.Education) > 0 {
		b.WriteString("\nEducation:\n")
		for i, edu := range record.Education {
			fmt.Fprintf(&b, "%d. %s - %s (%s)\n", i+1, orNA(edu.Degree), orNA(edu.School), orNA(edu.Duration))
		}
	}

	if len(record.Skills) > 0 {
		shown := record.Skills
		if len(shown) > maxSkills {
			shown = shown[:maxSkills]
		}
		b.WriteString("\nSkills: " + strings.Join(shown, ", "))
		if rest := len(record.Skills) - maxSkills; rest > 0 {
			fmt.Fprintf(&b, " and %d more...", rest)
		}
	}

	return b.String()
}

func orNA(v string) string {
	return orDefault(v, notAvailable)
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
