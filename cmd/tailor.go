package cmd

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/textailor/textailor/pkg/latex"
	"github.com/textailor/textailor/pkg/llm"
	"github.com/textailor/textailor/pkg/tailor"
)

const (
	// PromptDone finishes the suggestion selection.
	PromptDone = "Done"
	// PromptSelectAll toggles every suggestion on.
	PromptSelectAll = "Select all"
	// PromptCancel abandons the run without calling the API again.
	PromptCancel = "Cancel"
)

// pipelineTimeout bounds one tailoring run end to end.
const pipelineTimeout = 5 * time.Minute

//nolint:gochecknoglobals // Cobra boilerplate
var (
	jobDescription string
	jobFile        string
	jobTitle       string
	company        string
	review         bool
	skipPDF        bool
)

//nolint:gochecknoglobals // Cobra boilerplate
var tailorCmd = &cobra.Command{
	Use:   "tailor <resume.tex>",
	Short: "Tailor a LaTeX resume to a job description",
	Long: `Tailor a LaTeX resume to a job description.

Analyzes the posting against the resume, regenerates the LaTeX with the
requested emphasis, validates it compiles, and records the result in the
application ledger. With --review the suggestions are shown for approval
before any of them are applied.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		err := runTailor(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
	},
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(tailorCmd)

	tailorCmd.Flags().StringVarP(&jobDescription, "job-description", "j", "", "Job description text")
	tailorCmd.Flags().StringVarP(&jobFile, "job-file", "f", "", "File containing the job description")
	tailorCmd.Flags().StringVarP(&jobTitle, "job-title", "t", "", "Job title (taken from the analysis when omitted)")
	tailorCmd.Flags().StringVarP(&company, "company", "c", "", "Company name to record in the ledger")
	tailorCmd.Flags().BoolVarP(&review, "review", "r", false, "Review suggestions before applying them")
	tailorCmd.Flags().BoolVar(&skipPDF, "skip-pdf", false, "Skip PDF generation, keep only the .tex output")
}

func runTailor(resumeFile string) (err error) {
	logger, err := newLogger()
	if err != nil {
		err = errors.Wrap(err, "failed to create logger")
		return err
	}
	defer func() { _ = logger.Sync() }()

	jd, err := loadJobDescription()
	if err != nil {
		return err
	}

	_, t, err := buildTailor(logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), pipelineTimeout)
	defer cancel()

	req := tailor.Request{
		ResumeFile:     resumeFile,
		JobDescription: jd,
		JobTitle:       jobTitle,
		Company:        company,
		SkipPDF:        skipPDF,
	}

	if review {
		err = runTailorWithReview(ctx, t, req)
		return err
	}

	result, err := t.Run(ctx, req)
	if err != nil {
		err = describePipelineError(err)
		return err
	}

	printResult(result.ID, result.TailoredResume, result.PDFResume)

	return err
}

// runTailorWithReview analyzes first, asks the user which suggestions to
// apply, and only then calls the API again with the approved subset.
func runTailorWithReview(ctx context.Context, t *tailor.Tailor, req tailor.Request) (err error) {
	resume, analysis, err := t.Analyze(ctx, req)
	if err != nil {
		return err
	}

	if req.JobTitle == "" {
		req.JobTitle = analysis.JobTitle
	}

	approved, cancelled, err := promptApproved(analysis)
	if err != nil {
		err = errors.Wrap(err, "suggestion selection failed")
		return err
	}

	if cancelled {
		fmt.Println("Cancelled. No changes were applied.")
		return err
	}

	if approved.Empty() {
		err = errors.New("no suggestions selected, nothing to apply")
		return err
	}

	result, err := t.Complete(ctx, req, resume, approved)
	if err != nil {
		err = describePipelineError(err)
		return err
	}

	printResult(result.ID, result.TailoredResume, result.PDFResume)

	return err
}

func loadJobDescription() (jd string, err error) {
	if jobDescription == "" && jobFile == "" {
		err = errors.New("either --job-description or --job-file is required")
		return jd, err
	}

	if jobDescription != "" {
		jd = jobDescription
		return jd, err
	}

	data, err := os.ReadFile(jobFile)
	if err != nil {
		err = errors.Wrapf(err, "failed to read job description file: %s", jobFile)
		return jd, err
	}

	jd = strings.TrimSpace(string(data))
	if jd == "" {
		err = errors.Errorf("job description file is empty: %s", jobFile)
		return jd, err
	}

	return jd, err
}

// suggestion is one selectable analysis item.
type suggestion struct {
	key   string
	label string
}

// promptApproved walks the user through the suggestion list with a toggle
// menu. Title suggestions are shown nowhere: the approval flow never
// applies them.
func promptApproved(analysis llm.Analysis) (approved llm.ApprovedChanges, cancelled bool, err error) {
	suggestions := flattenAnalysis(analysis)
	if len(suggestions) == 0 {
		return approved, cancelled, err
	}

	selected := make(map[string]bool)

	for {
		items := make([]string, 0, len(suggestions)+3)
		for _, s := range suggestions {
			mark := "[ ]"
			if selected[s.key] {
				mark = "[x]"
			}
			items = append(items, mark+" "+s.label)
		}
		items = append(items, PromptSelectAll, PromptDone, PromptCancel)

		prompt := promptui.Select{
			Label: "Toggle suggestions to apply, then choose Done",
			Items: items,
			Size:  12,
		}

		var index int
		index, _, err = prompt.Run()
		if err != nil {
			return approved, cancelled, err
		}

		switch {
		case index < len(suggestions):
			key := suggestions[index].key
			selected[key] = !selected[key]
		case items[index] == PromptSelectAll:
			for _, s := range suggestions {
				selected[s.key] = true
			}
		case items[index] == PromptCancel:
			cancelled = true
			return approved, cancelled, err
		default:
			var keys []string
			for key, on := range selected {
				if on {
					keys = append(keys, key)
				}
			}
			approved = llm.SelectApproved(analysis, keys)
			return approved, cancelled, err
		}
	}
}

// flattenAnalysis turns the analysis into a stable, labeled suggestion list.
func flattenAnalysis(analysis llm.Analysis) (suggestions []suggestion) {
	addList := func(name, label string, items []string) {
		for i, item := range items {
			suggestions = append(suggestions, suggestion{
				key:   fmt.Sprintf("%s:%d", name, i),
				label: fmt.Sprintf("%s: %s", label, item),
			})
		}
	}

	addMap := func(name, label string, items map[string]string) {
		keys := make([]string, 0, len(items))
		for key := range items {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			suggestions = append(suggestions, suggestion{
				key:   name + ":" + key,
				label: fmt.Sprintf("%s [%s]: %s", label, key, items[key]),
			})
		}
	}

	addList("key_skills", "Key skill", analysis.KeySkills)
	addList("keywords", "Keyword", analysis.Keywords)
	addList("missing_skills", "Missing skill", analysis.MissingSkills)
	addMap("experience_suggestions", "Experience", analysis.ExperienceSuggestions)
	addMap("content_additions", "Content", analysis.ContentAdditions)
	addList("power_words", "Power word", analysis.PowerWords)
	addMap("format_suggestions", "Format", analysis.FormatSuggestions)

	return suggestions
}

func describePipelineError(err error) (out error) {
	if errors.Cause(err) == latex.ErrValidation {
		out = errors.Wrap(err, "the tailored resume does not compile, rerun with --review and different selections")
		return out
	}

	out = err
	return out
}

func printResult(id int, texPath, pdfPath string) {
	fmt.Printf("Tailored resume written to %s\n", texPath)
	if pdfPath != "" {
		fmt.Printf("PDF written to %s\n", pdfPath)
	}
	fmt.Printf("Recorded as application #%d\n", id)
}
