package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var listFormat string

//nolint:gochecknoglobals // Cobra boilerplate
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked applications",
	Run: func(cmd *cobra.Command, args []string) {
		err := runList()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
	},
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVarP(&listFormat, "output", "o", "table", "Output format (table or json)")
}

func runList() (err error) {
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

	apps := l.List()

	if listFormat == "json" {
		var data []byte
		data, err = json.MarshalIndent(apps, "", "  ")
		if err != nil {
			err = errors.Wrap(err, "failed to marshal applications")
			return err
		}
		fmt.Println(string(data))
		return err
	}

	if len(apps) == 0 {
		fmt.Println("No applications tracked yet.")
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCREATED\tJOB TITLE\tCOMPANY\tAPPLIED")
	for _, app := range apps {
		applied := "no"
		if app.Applied {
			applied = "yes"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			app.ID, app.DateCreated.Format("2006-01-02"), app.JobTitle, app.Company, applied)
	}
	err = w.Flush()

	return err
}
