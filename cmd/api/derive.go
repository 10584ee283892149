package main

import (
	"encoding/json"
	"fmt"

	"tb-treatment-plans/internal/domain/schedule"
	"tb-treatment-plans/internal/domain/treatmentplans"

	"github.com/spf13/cobra"
)

type deriveFlags struct {
	regimen string
	weight  float64
	start   string
	name    string
}

func newDeriveCmd() *cobra.Command {
	var f deriveFlags

	cmd := &cobra.Command{
		Use:     "derive",
		Short:   "Derive a treatment plan offline and print it as JSON",
		Example: `  tbplan derive --regimen "I. 2HRZE/4HR" --weight 10 --start 2024-01-15 --name "Juan Dela Cruz"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := derive(f)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return err
		},
	}

	cmd.Flags().StringVar(&f.regimen, "regimen", "", "regimen code, e.g. \"I. 2HRZE/4HR\"")
	cmd.Flags().Float64Var(&f.weight, "weight", 0, "patient weight in kg")
	cmd.Flags().StringVar(&f.start, "start", "", "start date YYYY-MM-DD")
	cmd.Flags().StringVar(&f.name, "name", "", "patient full name (optional)")
	_ = cmd.MarkFlagRequired("regimen")
	_ = cmd.MarkFlagRequired("weight")
	_ = cmd.MarkFlagRequired("start")

	return cmd
}

func derive(f deriveFlags) ([]byte, error) {
	start, err := schedule.ParseDate(f.start)
	if err != nil {
		return nil, err
	}
	p, err := treatmentplans.NewAssembler(nil, nil).Assemble(treatmentplans.AssembleInput{
		RegimenCode: f.regimen,
		WeightKg:    f.weight,
		StartDate:   start,
		Patient:     treatmentplans.PatientRef{FullName: f.name},
	})
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(treatmentplans.ToPlanResponse(p), "", "  ")
}
