// Package main implements crmctl, the offline companion of the CRM server: it scores
// fixture files with the same matcher, KYC and document rules the API uses.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "crmctl",
		Short:         "Fleet CRM scoring tools",
		Long:          "crmctl runs contact/company matching, KYC scoring and Brazilian document validation on JSON or YAML files.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newSimilarityCmd(),
		newMatchCmd(),
		newKYCCmd(),
		newValidateCmd(),
	)
	return root
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
