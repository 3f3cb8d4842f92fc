package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/textailor/textailor/pkg/config"
)

//nolint:gochecknoglobals // Cobra boilerplate
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default configuration file",
	Long: `Create a default configuration file at $HOME/.textailor/config.json.

Edit the file afterwards to set your Anthropic API key, or export it as
ANTHROPIC_API_KEY instead.`,
	Run: func(cmd *cobra.Command, args []string) {
		err := config.InitConfig(getConfigFile())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}

		fmt.Println("Config file created. Set your API key before the first run.")
	},
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(initCmd)
}
