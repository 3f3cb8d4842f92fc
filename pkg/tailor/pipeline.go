// Package tailor runs the end-to-end tailoring pipeline:
// read resume, analyze, optionally collect human approvals, customize,
// validate, persist. Execution is linear and synchronous; nothing is
// retried and nothing is written to the ledger unless every prior stage
// succeeded.
package tailor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/textailor/textailor/pkg/ledger"
	"github.com/textailor/textailor/pkg/llm"
	"go.uber.org/zap"
)

// Gateway sends prompts to the language model. llm.Client implements it.
type Gateway interface {
	Analyze(ctx context.Context, resume, jobDescription string) (analysis llm.Analysis, usage llm.Usage, err error)
	Customize(ctx context.Context, resume string, analysis llm.Analysis) (document string, usage llm.Usage, err error)
	CustomizeApproved(ctx context.Context, resume string, approved llm.ApprovedChanges) (document string, usage llm.Usage, err error)
}

// Validator compiles candidate documents. latex.Compiler implements it.
type Validator interface {
	Validate(ctx context.Context, document string) (err error)
	CompilePDF(ctx context.Context, document, dest string) (err error)
}

// Recorder logs token usage per gateway call. usage.Log implements it.
type Recorder interface {
	Record(operation, job string, u llm.Usage) (err error)
}

// Request describes one tailoring invocation.
type Request struct {
	ResumeFile     string
	JobDescription string
	JobTitle       string
	Company        string
	SkipPDF        bool
}

// Tailor composes the pipeline stages.
type Tailor struct {
	gateway   Gateway
	validator Validator
	recorder  Recorder
	ledger    *ledger.Ledger
	outputDir string
	logger    *zap.Logger
}

// New creates a pipeline. recorder may be nil when no usage log is wanted.
func New(gateway Gateway, validator Validator, recorder Recorder, l *ledger.Ledger, outputDir string, logger *zap.Logger) (t *Tailor) {
	t = &Tailor{
		gateway:   gateway,
		validator: validator,
		recorder:  recorder,
		ledger:    l,
		outputDir: outputDir,
		logger:    logger,
	}
	return t
}

// Ledger exposes the application ledger to callers that present or mutate
// records outside a pipeline run.
func (t *Tailor) Ledger() (l *ledger.Ledger) {
	l = t.ledger
	return l
}

// Run executes the full pipeline with no human review: the complete
// analysis drives customization.
func (t *Tailor) Run(ctx context.Context, req Request) (app ledger.Application, err error) {
	var resume string
	var analysis llm.Analysis
	resume, analysis, err = t.Analyze(ctx, req)
	if err != nil {
		return app, err
	}

	if req.JobTitle == "" {
		req.JobTitle = analysis.JobTitle
	}

	t.logger.Info("customizing resume",
		zap.String("job_title", req.JobTitle),
	)

	var document string
	var u llm.Usage
	document, u, err = t.gateway.Customize(ctx, resume, analysis)
	if err != nil {
		err = errors.Wrap(err, "customization failed")
		t.logger.Error("customization failed", zap.Error(err))
		return app, err
	}
	t.record("customize", req.JobTitle, u)

	app, err = t.validateAndPersist(ctx, req, document)
	return app, err
}

// Analyze runs the READ and ANALYZE stages and hands the results back so a
// human surface can collect approvals before the pipeline resumes via
// Complete. The usage row logs the job title known at call time, which may
// still be unknown.
func (t *Tailor) Analyze(ctx context.Context, req Request) (resume string, analysis llm.Analysis, err error) {
	resume, err = readResume(req.ResumeFile)
	if err != nil {
		t.logger.Error("failed to read resume", zap.String("path", req.ResumeFile), zap.Error(err))
		return resume, analysis, err
	}

	t.logger.Info("analyzing job description",
		zap.String("resume", req.ResumeFile),
		zap.Int("job_description_chars", len(req.JobDescription)),
	)

	var u llm.Usage
	analysis, u, err = t.gateway.Analyze(ctx, resume, req.JobDescription)
	if err != nil {
		err = errors.Wrap(err, "analysis failed")
		t.logger.Error("analysis failed", zap.Error(err))
		return resume, analysis, err
	}
	t.record("analyze", req.JobTitle, u)

	return resume, analysis, err
}

// Complete resumes the pipeline at CUSTOMIZE with a human-approved subset
// of suggestions. resume must be the text Analyze returned for the same
// request, and req.JobTitle should carry whatever title is known by now.
func (t *Tailor) Complete(ctx context.Context, req Request, resume string, approved llm.ApprovedChanges) (app ledger.Application, err error) {
	t.logger.Info("customizing resume with approved changes",
		zap.String("job_title", req.JobTitle),
	)

	var document string
	var u llm.Usage
	document, u, err = t.gateway.CustomizeApproved(ctx, resume, approved)
	if err != nil {
		err = errors.Wrap(err, "customization failed")
		t.logger.Error("customization failed", zap.Error(err))
		return app, err
	}
	t.record("customize", req.JobTitle, u)

	app, err = t.validateAndPersist(ctx, req, document)
	return app, err
}

// validateAndPersist runs the VALIDATE and PERSIST stages. A validation
// failure aborts before anything durable is written; the caller can detect
// it via errors.Cause == latex.ErrValidation and re-run customization.
func (t *Tailor) validateAndPersist(ctx context.Context, req Request, document string) (app ledger.Application, err error) {
	err = t.validator.Validate(ctx, document)
	if err != nil {
		err = errors.Wrap(err, "tailored resume does not compile")
		t.logger.Error("validation failed", zap.Error(err))
		return app, err
	}

	texPath := t.outputPath(req.ResumeFile, req.JobTitle)

	err = os.MkdirAll(t.outputDir, 0750)
	if err != nil {
		err = errors.Wrapf(err, "failed to create output directory: %s", t.outputDir)
		return app, err
	}

	err = os.WriteFile(texPath, []byte(document), 0600)
	if err != nil {
		err = errors.Wrapf(err, "failed to write tailored resume: %s", texPath)
		return app, err
	}

	t.logger.Info("saved tailored resume", zap.String("path", texPath))

	// PDF generation is best effort: a failure is logged and the record
	// simply carries no PDF
	pdfPath := ""
	if !req.SkipPDF {
		candidate := strings.TrimSuffix(texPath, ".tex") + ".pdf"
		pdfErr := t.validator.CompilePDF(ctx, document, candidate)
		if pdfErr != nil {
			t.logger.Warn("pdf generation failed, continuing without pdf", zap.Error(pdfErr))
		} else {
			pdfPath = candidate
			t.logger.Info("saved pdf", zap.String("path", pdfPath))
		}
	}

	app, err = t.ledger.Append(ledger.Application{
		OriginalResume: req.ResumeFile,
		TailoredResume: texPath,
		PDFResume:      pdfPath,
		JobTitle:       req.JobTitle,
	})
	if err != nil {
		err = errors.Wrap(err, "failed to record application")
		return app, err
	}

	if req.Company != "" {
		var found bool
		found, err = t.ledger.Update(app.ID, ledger.UpdateFields{Company: req.Company})
		if err != nil {
			err = errors.Wrap(err, "failed to stamp company")
			return app, err
		}
		if found {
			app.Company = req.Company
		}
	}

	t.logger.Info("application recorded",
		zap.Int("id", app.ID),
		zap.String("job_title", app.JobTitle),
	)

	return app, err
}

// record logs token usage when a recorder is configured. Usage logging
// never fails a run.
func (t *Tailor) record(operation, jobTitle string, u llm.Usage) {
	if t.recorder == nil {
		return
	}

	err := t.recorder.Record(operation, jobTitle, u)
	if err != nil {
		t.logger.Warn("failed to record token usage", zap.Error(err))
	}
}

// outputPath builds {base}_tailored{_jobTitleSlug}_{YYYYMMDD}.tex under the
// output directory.
func (t *Tailor) outputPath(resumeFile, jobTitle string) (path string) {
	base := strings.TrimSuffix(filepath.Base(resumeFile), filepath.Ext(resumeFile))

	suffix := ""
	if jobTitle != "" {
		suffix = "_" + slugify(jobTitle)
	}

	name := fmt.Sprintf("%s_tailored%s_%s.tex", base, suffix, time.Now().Format("20060102"))
	path = filepath.Join(t.outputDir, name)
	return path
}

// readResume loads the original LaTeX source.
func readResume(path string) (content string, err error) {
	var data []byte
	data, err = os.ReadFile(path)
	if err != nil {
		err = errors.Wrapf(err, "failed to read resume file: %s", path)
		return content, err
	}

	content = string(data)
	return content, err
}

// slugify makes a job title safe for a filename.
func slugify(title string) (slug string) {
	slug = strings.ReplaceAll(title, " ", "_")
	slug = strings.Map(func(r rune) (result rune) {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			result = '_'
		default:
			result = r
		}
		return result
	}, slug)
	return slug
}
