package cmd

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/textailor/textailor/pkg/web"
)

//nolint:gochecknoglobals // Cobra boilerplate
var (
	listenAddr  string
	templateDir string
)

//nolint:gochecknoglobals // Cobra boilerplate
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web interface",
	Long: `Run the web interface.

Serves the upload form, suggestion review, and the application list over
HTTP. Uses the same configuration, ledger, and usage log as the CLI.`,
	Run: func(cmd *cobra.Command, args []string) {
		err := runServe()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
	},
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&listenAddr, "listen", "l", ":8080", "Address to listen on")
	serveCmd.Flags().StringVar(&templateDir, "templates", "./templates", "Directory with the HTML templates")
}

func runServe() (err error) {
	logger, err := newLogger()
	if err != nil {
		err = errors.Wrap(err, "failed to create logger")
		return err
	}
	defer func() { _ = logger.Sync() }()

	cfg, t, err := buildTailor(logger)
	if err != nil {
		return err
	}

	server := web.New(t, cfg.Defaults.UploadDir, templateDir, logger)

	err = server.Listen(listenAddr)

	return err
}
