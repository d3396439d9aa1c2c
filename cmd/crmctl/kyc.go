package main

import (
	"sort"

	"github.com/spf13/cobra"

	"fleet-crm/internal/kyc"
	"fleet-crm/internal/models"
)

func newKYCCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "kyc",
		Short: "Compute KYC profiles for contacts, companies or vehicles",
	}
	cmd.PersistentFlags().StringVarP(&format, "format", "f", "json", "Output format: json or yaml")

	scorer := kyc.NewScorer()
	cmd.AddCommand(
		kycSubcommand("contact", "contacts", func(path string) ([]models.KYCProfile, error) {
			list, err := loadFile[models.Contact](path)
			return mapProfiles(list, err, scorer.ContactProfile)
		}, &format),
		kycSubcommand("company", "companies", func(path string) ([]models.KYCProfile, error) {
			list, err := loadFile[models.Company](path)
			return mapProfiles(list, err, scorer.CompanyProfile)
		}, &format),
		newKYCVehicleCmd(scorer, &format),
	)
	return cmd
}

func kycSubcommand(use, plural string, profiles func(path string) ([]models.KYCProfile, error), format *string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <file>",
		Short: "Score " + plural + " from a JSON/YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := profiles(args[0])
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), *format, out)
		},
	}
}

func mapProfiles[T any](list []T, err error, fn func(T) models.KYCProfile) ([]models.KYCProfile, error) {
	if err != nil {
		return nil, err
	}
	out := make([]models.KYCProfile, 0, len(list))
	for _, v := range list {
		out = append(out, fn(v))
	}
	return out, nil
}

func newKYCVehicleCmd(scorer *kyc.Scorer, format *string) *cobra.Command {
	var fleet bool
	cmd := &cobra.Command{
		Use:   "vehicle <file>",
		Short: "Score vehicles from a JSON/YAML file",
		Long:  "Scores each vehicle on its own. With --fleet, prints one display summary per company instead; company scores are never affected.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vehicles, err := loadFile[models.Vehicle](args[0])
			if err != nil {
				return err
			}
			if !fleet {
				out, _ := mapProfiles(vehicles, nil, scorer.VehicleProfile)
				return writeOutput(cmd.OutOrStdout(), *format, out)
			}

			byCompany := map[string][]models.Vehicle{}
			for _, v := range vehicles {
				byCompany[v.CompanyID] = append(byCompany[v.CompanyID], v)
			}
			ids := make([]string, 0, len(byCompany))
			for id := range byCompany {
				ids = append(ids, id)
			}
			sort.Strings(ids)
			out := make([]models.FleetSummary, 0, len(ids))
			for _, id := range ids {
				out = append(out, kyc.SummarizeFleet(id, byCompany[id]))
			}
			return writeOutput(cmd.OutOrStdout(), *format, out)
		},
	}
	cmd.Flags().BoolVar(&fleet, "fleet", false, "Summarize per company")
	return cmd
}
