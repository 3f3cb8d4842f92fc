// Package ledger persists the application ledger: one record per tailoring
// attempt, stored as a JSON array that is read fully and rewritten wholly
// on every change.
package ledger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// DefaultJobTitle is recorded when no job title is known.
const DefaultJobTitle = "Untitled Position"

// Application represents one tailoring attempt and its follow-up status.
type Application struct {
	ID              int        `json:"id"`
	DateCreated     time.Time  `json:"date_created"`
	OriginalResume  string     `json:"original_resume"`
	TailoredResume  string     `json:"tailored_resume"`
	PDFResume       string     `json:"pdf_resume,omitempty"`
	JobTitle        string     `json:"job_title"`
	Applied         bool       `json:"applied"`
	ApplicationDate *time.Time `json:"application_date,omitempty"`
	Company         string     `json:"company,omitempty"`
	JobLink         string     `json:"job_link,omitempty"`
	Notes           string     `json:"notes,omitempty"`
}

// UpdateFields carries the optional fields of an update operation. Empty
// strings mean "leave unchanged"; a field is never cleared by omission.
type UpdateFields struct {
	Applied bool
	Company string
	JobLink string
	Notes   string
}

// Ledger owns the in-memory application list and its file. All operations
// are serialized behind a mutex so concurrent callers (e.g. two requests in
// a server deployment) cannot lose updates in the read-modify-write cycle.
type Ledger struct {
	path   string
	logger *zap.Logger
	mu     sync.Mutex
	apps   []Application
}

// Open loads the ledger at path. An absent file starts an empty ledger; an
// unparsable file is logged and also starts empty.
func Open(path string, logger *zap.Logger) (l *Ledger, err error) {
	l = &Ledger{
		path:   path,
		logger: logger,
		apps:   []Application{},
	}

	var data []byte
	data, err = os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			err = nil
			return l, err
		}
		err = errors.Wrapf(err, "failed to read ledger file: %s", path)
		return l, err
	}

	parseErr := json.Unmarshal(data, &l.apps)
	if parseErr != nil {
		logger.Warn("could not parse ledger file, starting empty",
			zap.String("path", path),
			zap.Error(parseErr),
		)
		l.apps = []Application{}
	}

	return l, err
}

// Path returns the ledger file path.
func (l *Ledger) Path() (path string) {
	path = l.path
	return path
}

// List returns a copy of all application records.
func (l *Ledger) List() (apps []Application) {
	l.mu.Lock()
	defer l.mu.Unlock()

	apps = make([]Application, len(l.apps))
	copy(apps, l.apps)
	return apps
}

// Get returns the record with the given id.
func (l *Ledger) Get(id int) (app Application, found bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, candidate := range l.apps {
		if candidate.ID == id {
			app = candidate
			found = true
			return app, found
		}
	}

	return app, found
}

// Append assigns the next id, stamps the creation time and persists the
// ledger. Ids are max(existing)+1 so they are never reused, even after
// deletions.
func (l *Ledger) Append(app Application) (stored Application, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	maxID := 0
	for _, existing := range l.apps {
		if existing.ID > maxID {
			maxID = existing.ID
		}
	}

	app.ID = maxID + 1
	if app.DateCreated.IsZero() {
		app.DateCreated = time.Now()
	}
	if app.JobTitle == "" {
		app.JobTitle = DefaultJobTitle
	}

	l.apps = append(l.apps, app)

	err = l.save()
	if err != nil {
		return stored, err
	}

	stored = app
	return stored, err
}

// Update merges the non-empty fields into the record with the given id and
// persists the ledger. Setting applied also stamps the application date.
// An unknown id is not an error: found is false and nothing is written.
func (l *Ledger) Update(id int, fields UpdateFields) (found bool, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.apps {
		if l.apps[i].ID != id {
			continue
		}

		if fields.Applied {
			l.apps[i].Applied = true
			now := time.Now()
			l.apps[i].ApplicationDate = &now
		}

		if fields.Company != "" {
			l.apps[i].Company = fields.Company
		}

		if fields.JobLink != "" {
			l.apps[i].JobLink = fields.JobLink
		}

		if fields.Notes != "" {
			l.apps[i].Notes = fields.Notes
		}

		err = l.save()
		if err != nil {
			return found, err
		}

		found = true
		return found, err
	}

	l.logger.Warn("no application with requested id", zap.Int("id", id))

	return found, err
}

// DeleteMany removes the records with the given ids and persists the
// ledger. Freed ids are not handed out again.
func (l *Ledger) DeleteMany(ids []int) (err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	drop := make(map[int]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}

	kept := make([]Application, 0, len(l.apps))
	for _, app := range l.apps {
		if !drop[app.ID] {
			kept = append(kept, app)
		}
	}
	l.apps = kept

	err = l.save()
	return err
}

// save rewrites the whole ledger file, pretty-printed. The write goes
// through a temp file and rename so readers never observe a torn file.
func (l *Ledger) save() (err error) {
	var data []byte
	data, err = json.MarshalIndent(l.apps, "", "  ")
	if err != nil {
		err = errors.Wrap(err, "failed to marshal ledger")
		return err
	}

	dir := filepath.Dir(l.path)
	err = os.MkdirAll(dir, 0750)
	if err != nil {
		err = errors.Wrapf(err, "failed to create ledger directory: %s", dir)
		return err
	}

	var tmp *os.File
	tmp, err = os.CreateTemp(dir, ".applications-*.json")
	if err != nil {
		err = errors.Wrap(err, "failed to create temporary ledger file")
		return err
	}

	_, err = tmp.Write(data)
	if err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		err = errors.Wrap(err, "failed to write temporary ledger file")
		return err
	}

	err = tmp.Close()
	if err != nil {
		os.Remove(tmp.Name())
		err = errors.Wrap(err, "failed to close temporary ledger file")
		return err
	}

	err = os.Rename(tmp.Name(), l.path)
	if err != nil {
		os.Remove(tmp.Name())
		err = errors.Wrapf(err, "failed to replace ledger file: %s", l.path)
		return err
	}

	return err
}
