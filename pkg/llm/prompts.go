package llm

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

const (
	// analysisSystem is the system instruction for the analysis call.
	analysisSystem = "You are an expert resume tailoring assistant that helps customize resumes for specific job descriptions. Provide only valid JSON in your response."
	// customizeSystem is the system instruction for the customization call.
	customizeSystem = "You are an expert LaTeX editor. Return only valid LaTeX code with no additional text."
)

// buildAnalysisPrompt creates the analysis prompt from resume and job
// description text. The response is requested as a JSON object with exactly
// nine named fields.
func buildAnalysisPrompt(resume, jobDescription string) (prompt string) {
	prompt = fmt.Sprintf(`You are an expert resume tailoring assistant. Your task is to analyze a job description and a resume, then provide guidance on tailoring the resume to better match the job requirements.

# Job Description:
%s

# Current Resume (LaTeX format):
%s

Please provide a structured analysis in JSON format with the following information:
1. "job_title": The exact job title from the job description (string)
2. "key_skills": Extract the key skills and requirements from the job description (array of strings)
3. "keywords": Industry keywords and phrases that ATS systems will scan for (array of strings)
4. "missing_skills": Identify skills in the job description that don't appear in the resume (array of strings)
5. "title_suggestions": Suggest how to modify job titles to better align with the target position (object with original titles as keys and suggested titles as values)
6. "experience_suggestions": Suggest modifications to experience descriptions to highlight relevant skills (object with section identifiers as keys and suggested text as values)
7. "content_additions": Suggest additional content to add to the resume (object with section names as keys and content to add as values)
8. "power_words": Strong action verbs and power words relevant to this role (array of strings)
9. "format_suggestions": Formatting changes that improve ATS compatibility (object with aspect names as keys and suggestions as values)

Your response should be valid JSON that can be parsed programmatically. Focus on making changes that will improve ATS compatibility while maintaining the truth of the resume.`,
		fence("", jobDescription), fence("latex", resume))

	return prompt
}

// buildCustomizationPrompt creates the customization prompt from resume
// text and a full analysis.
func buildCustomizationPrompt(resume string, analysis Analysis) (prompt string) {
	prompt = fmt.Sprintf(`You are an expert LaTeX resume editor. Your task is to modify a LaTeX resume based on analysis to better target a specific job.

# Original Resume (LaTeX format):
%s

# Analysis to incorporate:
%s

Please modify the LaTeX resume to incorporate the suggestions from the analysis. Focus on:
1. Adjusting job titles if suggested
2. Enhancing experience descriptions to highlight relevant skills
3. Adding any missing skills that the candidate genuinely has
4. Making the resume more ATS-friendly for this specific job

Incorporate ONLY the suggestions given above. Preserve the single-page formatting of the original document.

Return ONLY the complete modified LaTeX code with no additional comments or explanations. The code should be valid LaTeX that will compile correctly.`,
		fence("latex", resume), fence("json", analysisJSON(analysis)))

	return prompt
}

// buildApprovedPrompt creates the restricted customization prompt from a
// human-approved subset of suggestions. Each suggestion category present is
// rendered as its own itemized block; empty categories are omitted entirely.
func buildApprovedPrompt(resume string, approved ApprovedChanges) (prompt string) {
	var blocks strings.Builder

	writeList(&blocks, "Key Skills to Emphasize", approved.KeySkills)
	writeList(&blocks, "Industry Keywords to Include", approved.Keywords)
	writeList(&blocks, "Missing Skills to Add", approved.MissingSkills)
	writeMap(&blocks, "Experience Suggestions", approved.ExperienceSuggestions)
	writeMap(&blocks, "Content Additions", approved.ContentAdditions)
	writeList(&blocks, "Power Words to Use", approved.PowerWords)
	writeMap(&blocks, "ATS Format Suggestions", approved.FormatSuggestions)

	prompt = fmt.Sprintf(`You are an expert LaTeX resume editor. Your task is to modify a LaTeX resume, applying ONLY the approved changes listed below.

# Original Resume (LaTeX format):
%s

# Approved Changes to Incorporate:
%s
Apply ONLY the changes listed above. Do not make any other modifications. Preserve the single-page formatting of the original document.

Return ONLY the complete modified LaTeX code with no additional comments or explanations. The code should be valid LaTeX that will compile correctly.`,
		fence("latex", resume), blocks.String())

	return prompt
}

// writeList appends an itemized block for a string-array category. Empty
// categories produce no output, not even a header.
func writeList(b *strings.Builder, header string, items []string) {
	if len(items) == 0 {
		return
	}

	b.WriteString("## " + header + ":\n")
	for _, item := range items {
		b.WriteString("- " + item + "\n")
	}
	b.WriteString("\n")
}

// writeMap appends an itemized block for a string-map category in sorted
// key order so prompts are deterministic.
func writeMap(b *strings.Builder, header string, items map[string]string) {
	if len(items) == 0 {
		return
	}

	keys := make([]string, 0, len(items))
	for key := range items {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	b.WriteString("## " + header + ":\n")
	for _, key := range keys {
		b.WriteString("- " + key + ": " + items[key] + "\n")
	}
	b.WriteString("\n")
}

// fence wraps content in a markdown code fence with an optional label.
func fence(label, content string) (fenced string) {
	fenced = "```" + label + "\n" + content + "\n```"
	return fenced
}

// analysisJSON renders an analysis as indented JSON for prompt embedding.
func analysisJSON(analysis Analysis) (rendered string) {
	data, err := json.MarshalIndent(analysis, "", "  ")
	if err != nil {
		return rendered
	}
	rendered = string(data)
	return rendered
}
