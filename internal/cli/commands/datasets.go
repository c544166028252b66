package commands

import (
	"fmt"

	"elexon/internal/cli/ui"
	"elexon/pkg"

	"github.com/spf13/cobra"
)

func newDatasetsCmd(opts *globalOptions) *cobra.Command {
	var (
		category string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:     "datasets",
		Aliases: []string{"ls"},
		Short:   "List the available datasets",
		Example: `  $ elexon datasets
  $ elexon datasets --category generation
  $ elexon datasets --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := opts.loadRegistry(cmd.Context())
			if err != nil {
				return err
			}

			datasets := reg.Filter(category)
			if asJSON {
				return pkg.PrettyPrint(cmd.OutOrStdout(), datasets)
			}
			if len(datasets) == 0 {
				ui.PrintWarning("no datasets in category %q, categories are: %v", category, reg.Categories())
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.RenderDatasets(datasets))
			ui.PrintInfo("%d datasets", len(datasets))
			return nil
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "Only list datasets of this category")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the records as JSON")
	return cmd
}

func newDescribeCmd(opts *globalOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "describe <alias>",
		Aliases: []string{"info"},
		Short:   "Show the description and parameters of a dataset",
		Long: `Show the description and parameters of a dataset.

The alias may be the operation id, the dataset name or its code.`,
		Example: `  $ elexon describe MID
  $ elexon describe get-datasets-mid --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := opts.loadRegistry(cmd.Context())
			if err != nil {
				return err
			}

			ds, err := reg.Lookup(args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return pkg.PrettyPrint(cmd.OutOrStdout(), ds)
			}
			fmt.Fprint(cmd.OutOrStdout(), ui.RenderDataset(ds))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the record as JSON")
	return cmd
}
