// Package latex validates and compiles LaTeX documents through an external
// typesetting engine.
package latex

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// ErrValidation indicates that a document failed to compile. Callers can
// test for it with errors.Cause to offer recovery (e.g. re-running
// customization with different selections) instead of treating the failure
// like an I/O or API fault.
var ErrValidation = errors.New("latex compilation failed")

// Compiler invokes an external typesetting engine against candidate
// documents. The engine is run non-interactively in an isolated temporary
// directory; no compiler output survives beyond the temporary scope unless
// a PDF is explicitly copied out.
type Compiler struct {
	engine string
}

// NewCompiler creates a compiler around the given engine binary
// (e.g. "pdflatex").
func NewCompiler(engine string) (compiler *Compiler) {
	compiler = &Compiler{
		engine: engine,
	}
	return compiler
}

// CheckEngine verifies the typesetting engine is installed.
func (c *Compiler) CheckEngine() (err error) {
	_, err = exec.LookPath(c.engine)
	if err != nil {
		err = errors.Errorf("%s not found in PATH (install a LaTeX distribution to validate and compile documents)", c.engine)
		return err
	}
	return err
}

// Validate compiles document in a temporary directory and reports success
// iff the engine exits with status zero. Failures wrap ErrValidation and
// carry the engine's diagnostic output.
func (c *Compiler) Validate(ctx context.Context, document string) (err error) {
	err = c.compile(ctx, document, "")
	return err
}

// CompilePDF compiles document and copies the produced PDF to dest. A
// compile failure wraps ErrValidation; a missing or uncopyable PDF is an
// ordinary error the caller may treat as "no PDF available".
func (c *Compiler) CompilePDF(ctx context.Context, document, dest string) (err error) {
	err = c.compile(ctx, document, dest)
	return err
}

// compile writes document to a temp dir and runs the engine there. When
// pdfDest is non-empty, the produced PDF is copied to it before the temp
// dir is discarded.
func (c *Compiler) compile(ctx context.Context, document, pdfDest string) (err error) {
	var tempDir string
	tempDir, err = os.MkdirTemp("", "textailor-*")
	if err != nil {
		err = errors.Wrap(err, "failed to create temporary directory")
		return err
	}
	defer os.RemoveAll(tempDir)

	texPath := filepath.Join(tempDir, "resume_temp.tex")
	err = os.WriteFile(texPath, []byte(document), 0600)
	if err != nil {
		err = errors.Wrapf(err, "failed to write temporary document: %s", texPath)
		return err
	}

	cmd := exec.CommandContext(
		ctx,
		c.engine,
		"-interaction=nonstopmode",
		"-output-directory", tempDir,
		texPath,
	)

	var output []byte
	output, err = cmd.CombinedOutput()
	if err != nil {
		err = errors.Wrapf(ErrValidation, "%s: %s", err.Error(), diagnosticTail(string(output)))
		return err
	}

	if pdfDest == "" {
		return err
	}

	// Copy the PDF out before the deferred cleanup discards it
	var data []byte
	data, err = os.ReadFile(filepath.Join(tempDir, "resume_temp.pdf"))
	if err != nil {
		err = errors.Wrap(err, "engine exited cleanly but produced no PDF")
		return err
	}

	destDir := filepath.Dir(pdfDest)
	err = os.MkdirAll(destDir, 0750)
	if err != nil {
		err = errors.Wrapf(err, "failed to create output directory: %s", destDir)
		return err
	}

	err = os.WriteFile(pdfDest, data, 0600)
	if err != nil {
		err = errors.Wrapf(err, "failed to copy PDF to %s", pdfDest)
		return err
	}

	return err
}

// diagnosticTail trims engine output to the last few lines, which is where
// LaTeX engines report the actual error.
func diagnosticTail(output string) (tail string) {
	const maxLines = 20

	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
	}

	tail = strings.Join(lines, "\n")
	return tail
}
