// Package usage appends one CSV row per gateway call with token counts and
// a cost estimate.
package usage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/textailor/textailor/pkg/llm"
)

// header is written once when the log file is created.
var header = []string{
	"timestamp",
	"operation",
	"job",
	"prompt_tokens",
	"completion_tokens",
	"total_tokens",
	"cost_estimate_usd",
}

// Log is an append-only CSV token-usage log. Cost estimates are computed
// from fixed per-million-token input and output rates.
type Log struct {
	path       string
	inputRate  float64
	outputRate float64
	mu         sync.Mutex
}

// NewLog creates a usage log writing to path with the given USD rates per
// million input and output tokens.
func NewLog(path string, inputRate, outputRate float64) (l *Log) {
	l = &Log{
		path:       path,
		inputRate:  inputRate,
		outputRate: outputRate,
	}
	return l
}

// Cost estimates the USD cost of a call.
func (l *Log) Cost(u llm.Usage) (cost float64) {
	cost = float64(u.InputTokens)/1e6*l.inputRate + float64(u.OutputTokens)/1e6*l.outputRate
	return cost
}

// Record appends one row for a gateway call. The job column records the job
// title known at call time, which may be "unknown" before analysis has
// produced one.
func (l *Log) Record(operation, job string, u llm.Usage) (err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if job == "" {
		job = "unknown"
	}

	dir := filepath.Dir(l.path)
	err = os.MkdirAll(dir, 0750)
	if err != nil {
		err = errors.Wrapf(err, "failed to create usage log directory: %s", dir)
		return err
	}

	var file *os.File
	file, err = os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		err = errors.Wrapf(err, "failed to open usage log: %s", l.path)
		return err
	}
	defer file.Close()

	var info os.FileInfo
	info, err = file.Stat()
	if err != nil {
		err = errors.Wrap(err, "failed to stat usage log")
		return err
	}

	writer := csv.NewWriter(file)

	if info.Size() == 0 {
		err = writer.Write(header)
		if err != nil {
			err = errors.Wrap(err, "failed to write usage log header")
			return err
		}
	}

	row := []string{
		time.Now().Format(time.RFC3339),
		operation,
		job,
		strconv.Itoa(u.InputTokens),
		strconv.Itoa(u.OutputTokens),
		strconv.Itoa(u.Total()),
		fmt.Sprintf("%.6f", l.Cost(u)),
	}

	err = writer.Write(row)
	if err != nil {
		err = errors.Wrap(err, "failed to write usage log row")
		return err
	}

	writer.Flush()
	err = writer.Error()
	if err != nil {
		err = errors.Wrap(err, "failed to flush usage log")
		return err
	}

	return err
}
