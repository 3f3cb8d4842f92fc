package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/textailor/textailor/pkg/ledger"
)

//nolint:gochecknoglobals // Cobra boilerplate
var (
	updateApplied bool
	updateCompany string
	updateJobLink string
	updateNotes   string
)

//nolint:gochecknoglobals // Cobra boilerplate
var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update the status of a tracked application",
	Long: `Update the status of a tracked application.

Only the fields passed as flags change. Marking an application as applied
stamps the application date.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		err := runUpdate(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
	},
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(updateCmd)

	updateCmd.Flags().BoolVar(&updateApplied, "applied", false, "Mark the application as submitted")
	updateCmd.Flags().StringVar(&updateCompany, "company", "", "Company name")
	updateCmd.Flags().StringVar(&updateJobLink, "job-link", "", "Link to the job posting")
	updateCmd.Flags().StringVar(&updateNotes, "notes", "", "Free-form notes")
}

func runUpdate(idArg string) (err error) {
	id, err := strconv.Atoi(idArg)
	if err != nil {
		err = errors.Errorf("invalid application id: %s", idArg)
		return err
	}

	logger, err := newLogger()
	if err != nil {
		err = errors.Wrap(err, "failed to create logger")
		return err
	}
	defer func() { _ = logger.Sync() }()

	l, err := openLedger(logger)
	if err != nil {
		return err
	}

	found, err := l.Update(id, ledger.UpdateFields{
		Applied: updateApplied,
		Company: updateCompany,
		JobLink: updateJobLink,
		Notes:   updateNotes,
	})
	if err != nil {
		err = errors.Wrapf(err, "failed to update application %d", id)
		return err
	}

	if !found {
		err = errors.Errorf("application %d not found", id)
		return err
	}

	fmt.Printf("Application %d updated.\n", id)

	return err
}
