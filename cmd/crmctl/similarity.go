package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fleet-crm/pkg/utils"
)

func newSimilarityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "similarity <a> <b>",
		Short: "Print the token Jaccard similarity of two strings",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%.4f\n", utils.Similarity(args[0], args[1]))
			return err
		},
	}
}
