// Command adminx runs the documentation server of the admin app.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "adminx",
		Short: "Documentation server for the adminx admin panel",
		Long: `adminx serves the documentation pages of the admin panel
middleware: layout, mixins, error handling and authentication.

Configuration is read from ADMINX_* environment variables and an
optional .env file.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
