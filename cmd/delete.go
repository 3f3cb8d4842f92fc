package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var deleteCmd = &cobra.Command{
	Use:   "delete <id> [id...]",
	Short: "Delete tracked applications from the ledger",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		err := runDelete(args)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
	},
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(args []string) (err error) {
	ids := make([]int, 0, len(args))
	for _, arg := range args {
		var id int
		id, err = strconv.Atoi(arg)
		if err != nil {
			err = errors.Errorf("invalid application id: %s", arg)
			return err
		}
		ids = append(ids, id)
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

	err = l.DeleteMany(ids)
	if err != nil {
		err = errors.Wrap(err, "failed to delete applications")
		return err
	}

	fmt.Printf("Deleted %d application(s).\n", len(ids))

	return err
}
