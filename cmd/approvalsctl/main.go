// Command approvalsctl runs a product through the approvals checks from a terminal.
package main

import (
	"fmt"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "approvalsctl",
	Short:         "Product approvals from the command line",
	Long:          "approvalsctl uploads a product specification and company license to the approvals service and prints the result of every verification step.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
