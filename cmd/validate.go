package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/tailings/app"
	"github.com/kilianp07/tailings/config"
	"github.com/kilianp07/tailings/core/model"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration and input data without solving",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withService(cmd, func(svc *app.Service, _ *config.Config) error {
			base, err := svc.Base()
			if err != nil {
				return err
			}
			if err := model.ValidateAll(base.Sets, base.Raw); err != nil {
				return err
			}
			f, err := svc.Build()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s, %d variables, %d constraints\n",
				f.Model.Name, base.Sets, f.Model.NumVars(), f.Model.NumConstraints())
			sizes := f.Model.FamilySizes()
			for _, fam := range f.Model.Families() {
				fmt.Fprintf(cmd.OutOrStdout(), "  %-26s %d\n", fam, sizes[fam])
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
