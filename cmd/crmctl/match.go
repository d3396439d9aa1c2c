package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"fleet-crm/internal/matching"
	"fleet-crm/internal/models"
	"fleet-crm/internal/processor"
)

type matchOptions struct {
	contacts   string
	companies  string
	minScore   float64
	stackNames bool
	partitions int
	format     string
}

func newMatchCmd() *cobra.Command {
	opts := matchOptions{}
	def := matching.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Suggest the best company for every contact",
		Long:  "Scores every contact against every company and keeps, per contact, the best company at or above the minimum score. Results are sorted by score descending.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMatch(cmd, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.contacts, "contacts", "c", "", "Path to contacts JSON/YAML file (required)")
	cmd.Flags().StringVarP(&opts.companies, "companies", "k", "", "Path to companies JSON/YAML file (required)")
	cmd.Flags().Float64Var(&opts.minScore, "min-score", def.MinScore, "Minimum score for a suggestion")
	cmd.Flags().BoolVar(&opts.stackNames, "stack-name-rules", def.StackNameRules, "Let trade-name and legal-name hits both score")
	cmd.Flags().IntVarP(&opts.partitions, "partitions", "p", 1, "Scoring goroutines (0 = GOMAXPROCS)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "json", "Output format: json or yaml")

	for _, name := range []string{"contacts", "companies"} {
		if err := cmd.MarkFlagRequired(name); err != nil {
			panic(fmt.Sprintf("failed to mark %s flag as required: %v", name, err))
		}
	}
	return cmd
}

func runMatch(cmd *cobra.Command, opts matchOptions) error {
	contacts, err := loadFile[models.Contact](opts.contacts)
	if err != nil {
		return err
	}
	companies, err := loadFile[models.Company](opts.companies)
	if err != nil {
		return err
	}
	if opts.minScore < 0 || opts.minScore > 100 {
		return fmt.Errorf("--min-score must be between 0 and 100")
	}
	matching.EnsureIDs(contacts, companies)

	cfg := matching.DefaultConfig()
	cfg.MinScore = opts.minScore
	cfg.StackNameRules = opts.stackNames

	results, err := processor.MatchParallel(context.Background(), matching.NewMatcher(cfg), contacts, companies, opts.partitions)
	if err != nil {
		return fmt.Errorf("match failed: %w", err)
	}
	if results == nil {
		results = []models.MatchResult{}
	}
	return writeOutput(cmd.OutOrStdout(), opts.format, results)
}
