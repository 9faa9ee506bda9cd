package main

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/topiclm-experiments/internal/experiment"
)

func newListCmd() *cobra.Command {
	var configFile string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the experiments that can be run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			catalog, err := loadCatalog(configFile)
			if err != nil {
				return err
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"Experiment", "Output", "Corpora", "Variants", "Jobs"})
			for _, name := range catalog.Names() {
				def, err := catalog.Lookup(name)
				if err != nil {
					return err
				}
				jobs, err := experiment.Enumerate(def)
				if err != nil {
					return err
				}
				table.Append([]string{
					name,
					def.OutputName(),
					strings.Join(def.Corpora, ","),
					strings.Join(def.Variants, ","),
					fmt.Sprint(len(jobs)),
				})
			}
			table.Render()
			return nil
		},
	}
	cmd.Flags().StringVar(&configFile, "config", "", "YAML file with additional experiment definitions")
	return cmd
}
