package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fleet-crm/internal/validation"
)

var documentKinds = []struct {
	kind   string
	short  string
	format func(string) string
}{
	{"cpf", "Validate CPF check digits", validation.FormatCPF},
	{"cnpj", "Validate CNPJ check digits", validation.FormatCNPJ},
	{"cep", "Validate a CEP (8 digits)", validation.FormatCEP},
	{"plate", "Validate a vehicle plate (old or Mercosul)", validation.NormalizePlate},
	{"renavam", "Validate RENAVAM check digit", validation.OnlyDigits},
	{"phone", "Validate a Brazilian phone number", validation.FormatPhone},
}

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate Brazilian documents",
	}
	for _, d := range documentKinds {
		cmd.AddCommand(&cobra.Command{
			Use:   d.kind + " <value>...",
			Short: d.short,
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				invalid := 0
				out := cmd.OutOrStdout()
				for _, v := range args {
					if err := validation.ValidateDocument(d.kind, v); err != nil {
						invalid++
						fmt.Fprintf(out, "%s\tINVALID\t%v\n", v, err)
						continue
					}
					fmt.Fprintf(out, "%s\tOK\t%s\n", v, d.format(v))
				}
				if invalid > 0 {
					return fmt.Errorf("%d of %d values invalid", invalid, len(args))
				}
				return nil
			},
		})
	}
	return cmd
}
