// Package web serves the browser front end: a tailoring form with optional
// human review of suggestions, the applications list and record updates.
package web

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/template/html/v2"
	"github.com/pkg/errors"
	"github.com/textailor/textailor/pkg/llm"
	"github.com/textailor/textailor/pkg/tailor"
	"go.uber.org/zap"
)

// pendingReview holds an analysis awaiting human approval. Pending state
// lives outside the pipeline: it is in-process only and dropped once the
// review completes or the server restarts.
type pendingReview struct {
	req      tailor.Request
	resume   string
	analysis llm.Analysis
	created  time.Time
}

// Server is the fiber web application.
type Server struct {
	app       *fiber.App
	tailor    *tailor.Tailor
	uploadDir string
	logger    *zap.Logger

	mu      sync.Mutex
	pending map[string]*pendingReview
}

// New creates the web server with routes registered.
func New(t *tailor.Tailor, uploadDir, templateDir string, logger *zap.Logger) (s *Server) {
	engine := html.New(templateDir, ".html")

	app := fiber.New(fiber.Config{
		Views: engine,
	})
	app.Use(fiberlogger.New())

	s = &Server{
		app:       app,
		tailor:    t,
		uploadDir: uploadDir,
		logger:    logger,
		pending:   map[string]*pendingReview{},
	}

	app.Get("/", s.handleHome)
	app.Get("/tailor", s.handleTailorForm)
	app.Post("/tailor", s.handleTailor)
	app.Get("/review/:token", s.handleReviewForm)
	app.Post("/review/:token", s.handleReview)
	app.Get("/applications", s.handleApplications)
	app.Post("/update/:id", s.handleUpdate)
	app.Post("/applications/delete", s.handleDelete)
	app.Get("/result/:id", s.handleResult)
	app.Get("/download/:id/:kind", s.handleDownload)

	return s
}

// Listen starts serving on addr and blocks.
func (s *Server) Listen(addr string) (err error) {
	s.logger.Info("starting web server", zap.String("addr", addr))

	err = s.app.Listen(addr)
	if err != nil {
		err = errors.Wrapf(err, "web server failed on %s", addr)
		return err
	}

	return err
}

// pendingTTL is how long an unfinished review survives before a new
// tailoring request evicts it.
const pendingTTL = time.Hour

// storePending parks an analysis for review and returns its token. Stale
// reviews are evicted here so abandoned ones cannot accumulate.
func (s *Server) storePending(review *pendingReview) (token string, err error) {
	buf := make([]byte, 16)
	_, err = rand.Read(buf)
	if err != nil {
		err = errors.Wrap(err, "failed to generate review token")
		return token, err
	}
	token = hex.EncodeToString(buf)

	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-pendingTTL)
	for key, stale := range s.pending {
		if stale.created.Before(cutoff) {
			delete(s.pending, key)
		}
	}

	s.pending[token] = review

	return token, err
}

// getPending looks up a pending review by token without consuming it; a
// failed completion keeps the review available for different selections.
func (s *Server) getPending(token string) (review *pendingReview, found bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	review, found = s.pending[token]
	return review, found
}

// dropPending removes a completed review.
func (s *Server) dropPending(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.pending, token)
}
