package web

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/textailor/textailor/pkg/latex"
	"github.com/textailor/textailor/pkg/ledger"
	"github.com/textailor/textailor/pkg/llm"
	"github.com/textailor/textailor/pkg/tailor"
	"go.uber.org/zap"
)

// pipelineTimeout bounds one tailoring invocation end to end.
const pipelineTimeout = 5 * time.Minute

func (s *Server) handleHome(c *fiber.Ctx) (err error) {
	apps := s.tailor.Ledger().List()

	applied := 0
	for _, app := range apps {
		if app.Applied {
			applied++
		}
	}

	err = c.Render("index", fiber.Map{
		"Title":   "textailor",
		"Total":   len(apps),
		"Applied": applied,
	})
	return err
}

func (s *Server) handleTailorForm(c *fiber.Ctx) (err error) {
	err = c.Render("tailor", fiber.Map{
		"Title": "Tailor a resume",
		"Error": c.Query("error"),
	})
	return err
}

func (s *Server) handleTailor(c *fiber.Ctx) (err error) {
	file, fileErr := c.FormFile("resume_file")
	if fileErr != nil {
		err = flashRedirect(c, "/tailor", "No resume file selected")
		return err
	}

	if !strings.EqualFold(filepath.Ext(file.Filename), ".tex") {
		err = flashRedirect(c, "/tailor", "Invalid file type. Please upload a .tex file")
		return err
	}

	jobDescription := strings.TrimSpace(c.FormValue("job_description"))
	if jobDescription == "" {
		err = flashRedirect(c, "/tailor", "Job description is required")
		return err
	}

	mkdirErr := os.MkdirAll(s.uploadDir, 0750)
	if mkdirErr != nil {
		err = flashRedirect(c, "/tailor", "Could not store the uploaded resume")
		return err
	}

	resumePath := filepath.Join(s.uploadDir, filepath.Base(file.Filename))
	saveErr := c.SaveFile(file, resumePath)
	if saveErr != nil {
		s.logger.Error("failed to save upload", zap.Error(saveErr))
		err = flashRedirect(c, "/tailor", "Could not store the uploaded resume")
		return err
	}

	req := tailor.Request{
		ResumeFile:     resumePath,
		JobDescription: jobDescription,
		JobTitle:       strings.TrimSpace(c.FormValue("job_title")),
		Company:        strings.TrimSpace(c.FormValue("company")),
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), pipelineTimeout)
	defer cancel()

	// Review checkbox forks the pipeline: hold the analysis for approval
	// instead of customizing immediately
	if c.FormValue("review") != "" {
		err = s.startReview(ctx, c, req)
		return err
	}

	var app ledger.Application
	app, runErr := s.tailor.Run(ctx, req)
	if runErr != nil {
		err = flashRedirect(c, "/tailor", pipelineMessage(runErr))
		return err
	}

	err = c.Redirect(fmt.Sprintf("/result/%d", app.ID))
	return err
}

// startReview runs READ and ANALYZE, parks the result and sends the user
// to the approval form.
func (s *Server) startReview(ctx context.Context, c *fiber.Ctx, req tailor.Request) (err error) {
	resume, analysis, analyzeErr := s.tailor.Analyze(ctx, req)
	if analyzeErr != nil {
		err = flashRedirect(c, "/tailor", pipelineMessage(analyzeErr))
		return err
	}

	if req.JobTitle == "" {
		req.JobTitle = analysis.JobTitle
	}

	var token string
	token, err = s.storePending(&pendingReview{
		req:      req,
		resume:   resume,
		analysis: analysis,
		created:  time.Now(),
	})
	if err != nil {
		s.logger.Error("failed to store pending review", zap.Error(err))
		err = flashRedirect(c, "/tailor", "Could not start the review")
		return err
	}

	err = c.Redirect("/review/" + token)
	return err
}

func (s *Server) handleReviewForm(c *fiber.Ctx) (err error) {
	token := c.Params("token")

	review, found := s.getPending(token)
	if !found {
		err = flashRedirect(c, "/tailor", "Review not found or already completed")
		return err
	}

	err = c.Render("review", fiber.Map{
		"Title":      "Review suggestions",
		"Token":      token,
		"JobTitle":   review.req.JobTitle,
		"Categories": buildReviewCategories(review.analysis),
		"Error":      c.Query("error"),
	})
	return err
}

func (s *Server) handleReview(c *fiber.Ctx) (err error) {
	token := c.Params("token")

	review, found := s.getPending(token)
	if !found {
		err = flashRedirect(c, "/tailor", "Review not found or already completed")
		return err
	}

	var keys []string
	for _, value := range c.Request().PostArgs().PeekMulti("approve") {
		keys = append(keys, string(value))
	}

	approved := llm.SelectApproved(review.analysis, keys)
	if approved.Empty() {
		err = flashRedirect(c, "/review/"+token, "Select at least one suggestion to apply")
		return err
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), pipelineTimeout)
	defer cancel()

	app, completeErr := s.tailor.Complete(ctx, review.req, review.resume, approved)
	if completeErr != nil {
		// A compile failure keeps the review alive so the user can try
		// different selections; other failures do too, they cost nothing
		err = flashRedirect(c, "/review/"+token, pipelineMessage(completeErr))
		return err
	}

	s.dropPending(token)

	err = c.Redirect(fmt.Sprintf("/result/%d", app.ID))
	return err
}

func (s *Server) handleApplications(c *fiber.Ctx) (err error) {
	err = c.Render("applications", fiber.Map{
		"Title":        "Applications",
		"Applications": s.tailor.Ledger().List(),
		"Error":        c.Query("error"),
		"Message":      c.Query("message"),
	})
	return err
}

func (s *Server) handleUpdate(c *fiber.Ctx) (err error) {
	id, idErr := strconv.Atoi(c.Params("id"))
	if idErr != nil {
		err = flashRedirect(c, "/applications", "Invalid application id")
		return err
	}

	fields := ledger.UpdateFields{
		Applied: c.FormValue("applied") != "",
		Company: strings.TrimSpace(c.FormValue("company")),
		JobLink: strings.TrimSpace(c.FormValue("job_link")),
		Notes:   strings.TrimSpace(c.FormValue("notes")),
	}

	found, updateErr := s.tailor.Ledger().Update(id, fields)
	if updateErr != nil {
		s.logger.Error("failed to update application", zap.Int("id", id), zap.Error(updateErr))
		err = flashRedirect(c, "/applications", "Failed to update application")
		return err
	}

	if !found {
		err = flashRedirect(c, "/applications", "Application not found")
		return err
	}

	err = c.Redirect("/applications?message=" + url.QueryEscape("Application updated successfully"))
	return err
}

func (s *Server) handleDelete(c *fiber.Ctx) (err error) {
	var ids []int
	for _, value := range c.Request().PostArgs().PeekMulti("ids") {
		id, idErr := strconv.Atoi(string(value))
		if idErr != nil {
			continue
		}
		ids = append(ids, id)
	}

	if len(ids) == 0 {
		err = flashRedirect(c, "/applications", "No applications selected")
		return err
	}

	deleteErr := s.tailor.Ledger().DeleteMany(ids)
	if deleteErr != nil {
		s.logger.Error("failed to delete applications", zap.Ints("ids", ids), zap.Error(deleteErr))
		err = flashRedirect(c, "/applications", "Failed to delete applications")
		return err
	}

	err = c.Redirect("/applications?message=" + url.QueryEscape(fmt.Sprintf("Deleted %d application(s)", len(ids))))
	return err
}

func (s *Server) handleResult(c *fiber.Ctx) (err error) {
	id, idErr := strconv.Atoi(c.Params("id"))
	if idErr != nil {
		err = flashRedirect(c, "/applications", "Invalid application id")
		return err
	}

	app, found := s.tailor.Ledger().Get(id)
	if !found {
		err = flashRedirect(c, "/applications", "Application not found")
		return err
	}

	err = c.Render("result", fiber.Map{
		"Title":       fmt.Sprintf("Application #%d", app.ID),
		"Application": app,
		"HasPDF":      app.PDFResume != "",
	})
	return err
}

func (s *Server) handleDownload(c *fiber.Ctx) (err error) {
	id, idErr := strconv.Atoi(c.Params("id"))
	if idErr != nil {
		err = c.Status(fiber.StatusNotFound).SendString("not found")
		return err
	}

	app, found := s.tailor.Ledger().Get(id)
	if !found {
		err = c.Status(fiber.StatusNotFound).SendString("not found")
		return err
	}

	var path string
	switch c.Params("kind") {
	case "tex":
		path = app.TailoredResume
	case "pdf":
		path = app.PDFResume
	default:
		err = c.Status(fiber.StatusNotFound).SendString("not found")
		return err
	}

	if path == "" {
		err = c.Status(fiber.StatusNotFound).SendString("not found")
		return err
	}

	err = c.Download(path)
	return err
}

// reviewCategory is the view model for one suggestion category.
type reviewCategory struct {
	Name  string
	Label string
	Items []reviewItem
}

// reviewItem is one selectable suggestion.
type reviewItem struct {
	Key   string
	Label string
}

// buildReviewCategories flattens an analysis into checkbox groups. Title
// suggestions are not offered: the review flow never applies them.
func buildReviewCategories(analysis llm.Analysis) (categories []reviewCategory) {
	addList := func(name, label string, items []string) {
		if len(items) == 0 {
			return
		}
		category := reviewCategory{Name: name, Label: label}
		for i, item := range items {
			category.Items = append(category.Items, reviewItem{
				Key:   fmt.Sprintf("%s:%d", name, i),
				Label: item,
			})
		}
		categories = append(categories, category)
	}

	addMap := func(name, label string, items map[string]string) {
		if len(items) == 0 {
			return
		}
		category := reviewCategory{Name: name, Label: label}
		for _, key := range sortedKeys(items) {
			category.Items = append(category.Items, reviewItem{
				Key:   name + ":" + key,
				Label: key + ": " + items[key],
			})
		}
		categories = append(categories, category)
	}

	addList("key_skills", "Key skills to emphasize", analysis.KeySkills)
	addList("keywords", "Industry keywords", analysis.Keywords)
	addList("missing_skills", "Missing skills", analysis.MissingSkills)
	addMap("experience_suggestions", "Experience suggestions", analysis.ExperienceSuggestions)
	addMap("content_additions", "Content additions", analysis.ContentAdditions)
	addList("power_words", "Power words", analysis.PowerWords)
	addMap("format_suggestions", "ATS format suggestions", analysis.FormatSuggestions)

	return categories
}

func sortedKeys(m map[string]string) (keys []string) {
	keys = make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// flashRedirect sends the user back with a message in the query string,
// mirroring the flash-message flow of the form pages.
func flashRedirect(c *fiber.Ctx, target, message string) (err error) {
	err = c.Redirect(target + "?error=" + url.QueryEscape(message))
	return err
}

// pipelineMessage keeps the distinguishable failure readable for the form.
func pipelineMessage(err error) (message string) {
	if errors.Cause(err) == latex.ErrValidation {
		message = "The tailored resume did not compile. Try different selections or run again."
		return message
	}

	message = "Error tailoring resume: " + err.Error()
	return message
}
