package commands

import (
	"github.com/spf13/cobra"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Open the interactive menu",
	Long: `Open the interactive menu. It offers every operation as a form and
asks before booking whether to register a new customer.

Running airline with <dbname> <port> <user> opens the same menu.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMenu(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(menuCmd)
}
