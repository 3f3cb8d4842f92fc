package llm

import (
	"strings"
	"testing"
)

func TestBuildAnalysisPrompt(t *testing.T) {
	resume := "\\documentclass{article}\\begin{document}Resume\\end{document}"
	jd := "We are hiring a Senior Platform Engineer."

	prompt := buildAnalysisPrompt(resume, jd)

	if !strings.Contains(prompt, resume) {
		t.Error("Prompt should contain the resume text")
	}

	if !strings.Contains(prompt, jd) {
		t.Error("Prompt should contain the job description")
	}

	// All nine fields must be requested by name.
	fields := []string{
		"job_title",
		"key_skills",
		"keywords",
		"missing_skills",
		"title_suggestions",
		"experience_suggestions",
		"content_additions",
		"power_words",
		"format_suggestions",
	}
	for _, field := range fields {
		if !strings.Contains(prompt, `"`+field+`"`) {
			t.Errorf("Prompt should request field %q", field)
		}
	}
}

func TestBuildCustomizationPrompt(t *testing.T) {
	resume := "\\documentclass{article}"
	analysis := Analysis{
		JobTitle:  "Senior Engineer",
		KeySkills: []string{"Go", "Kubernetes"},
	}

	prompt := buildCustomizationPrompt(resume, analysis)

	if !strings.Contains(prompt, resume) {
		t.Error("Prompt should contain the resume text")
	}

	if !strings.Contains(prompt, "Senior Engineer") {
		t.Error("Prompt should contain the analysis job title")
	}

	if !strings.Contains(prompt, "Kubernetes") {
		t.Error("Prompt should contain the analysis skills")
	}
}

func TestBuildApprovedPrompt(t *testing.T) {
	resume := "\\documentclass{article}"
	approved := ApprovedChanges{
		KeySkills: []string{"Go", "Kubernetes"},
		ExperienceSuggestions: map[string]string{
			"Acme Corp": "Emphasize the migration work",
		},
	}

	prompt := buildApprovedPrompt(resume, approved)

	if !strings.Contains(prompt, "- Go\n") {
		t.Error("Prompt should itemize approved key skills")
	}

	if !strings.Contains(prompt, "- Acme Corp: Emphasize the migration work") {
		t.Error("Prompt should itemize approved experience suggestions")
	}

	if !strings.Contains(prompt, "Key Skills to Emphasize") {
		t.Error("Prompt should carry the key skills header")
	}

	// Empty categories are omitted entirely, headers included.
	omitted := []string{
		"Industry Keywords to Include",
		"Missing Skills to Add",
		"Content Additions",
		"Power Words to Use",
		"ATS Format Suggestions",
	}
	for _, header := range omitted {
		if strings.Contains(prompt, header) {
			t.Errorf("Prompt should omit empty category %q", header)
		}
	}
}

func TestBuildApprovedPromptSortedMaps(t *testing.T) {
	approved := ApprovedChanges{
		ContentAdditions: map[string]string{
			"zeta":  "last",
			"alpha": "first",
		},
	}

	prompt := buildApprovedPrompt("resume", approved)

	if strings.Index(prompt, "alpha") > strings.Index(prompt, "zeta") {
		t.Error("Map entries should render in sorted key order")
	}
}
