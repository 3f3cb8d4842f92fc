package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

//nolint:gochecknoglobals // Cobra boilerplate
var verbose bool

//nolint:gochecknoglobals // Cobra boilerplate
var configFile string

//nolint:gochecknoglobals // Cobra boilerplate
var jsonLog bool

//nolint:gochecknoglobals // Cobra boilerplate
var rootCmd = &cobra.Command{
	Use:   "textailor",
	Short: "Tailor LaTeX resumes to job descriptions",
	Long: `textailor analyzes a job description against your LaTeX resume and
regenerates the resume with the wording and emphasis the posting asks for.

Uses Claude API for the analysis and rewrite, validates the result with
pdflatex, and tracks every generated application in a local ledger.`,
}

// Execute runs the root command.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is $HOME/.textailor/config.json)")
	rootCmd.PersistentFlags().BoolVar(&jsonLog, "json", false, "JSON log encoding")
}

// getVerbose returns the verbose flag value.
func getVerbose() (result bool) {
	result = verbose
	return result
}

// getConfigFile returns the config file path.
func getConfigFile() (result string) {
	result = configFile
	return result
}

// newLogger builds the process logger. Console encoding by default, JSON
// with --json, debug level with --verbose.
func newLogger() (logger *zap.Logger, err error) {
	cfg := zap.NewDevelopmentConfig()
	if jsonLog {
		cfg = zap.NewProductionConfig()
	}

	if getVerbose() {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	} else {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	logger, err = cfg.Build()
	return logger, err
}
