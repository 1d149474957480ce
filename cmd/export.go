package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/kilianp07/tailings/app"
	"github.com/kilianp07/tailings/config"
	"github.com/kilianp07/tailings/core/formulation"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export-model",
	Short: "Write the assembled model in MPS format",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withService(cmd, func(svc *app.Service, _ *config.Config) error {
			w := cmd.OutOrStdout()
			if exportOut != "" && exportOut != "-" {
				f, err := os.Create(exportOut)
				if err != nil {
					return err
				}
				defer func() { _ = f.Close() }()
				w = f
			}
			return svc.ExportModel(w, formulation.WithoutFamilies(excludeFamilies...))
		})
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "output", "o", "-", "destination file, - for stdout")
	exportCmd.Flags().StringSliceVar(&excludeFamilies, "exclude", nil, "constraint families to leave out")
	rootCmd.AddCommand(exportCmd)
}
