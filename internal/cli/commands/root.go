package commands

import (
	"context"
	"fmt"

	"elexon"
	"elexon/internal/cli/ui"
	"elexon/internal/registry"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

// globalOptions are the persistent flags shared by every command
type globalOptions struct {
	envFile string
	spec    string
	baseURL string
	verbose bool
}

func (o *globalOptions) specSource() string {
	if o.spec != "" {
		return o.spec
	}
	return elexon.GetConfig().SpecSource
}

func (o *globalOptions) loadRegistry(ctx context.Context) (*registry.Registry, error) {
	reg, err := registry.Load(ctx, o.specSource())
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset registry: %w", err)
	}
	return reg, nil
}

// NewRootCommand builds the elexon command tree.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:     "elexon",
		Short:   "Elexon BMRS dataset catalogue and downloader",
		Version: version,
		Long: `Browse the datasets of the Elexon BMRS Insights API and download them.

The catalogue is built from the API's OpenAPI description. Long date ranges
are split into the windows the API accepts and long lists into batches of 10,
and the pieces are stitched back into one table.`,
		Example: `  # List every dataset
  $ elexon datasets

  # Show the parameters of a dataset
  $ elexon describe MID

  # Download Market Index Data for January as CSV
  $ elexon download MID -p from=2024-01-01 -p to=2024-02-01 -o csv > mid.csv`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := elexon.InitConfig(opts.envFile); err != nil {
				return err
			}
			if opts.verbose {
				elexon.SetLogLevel("debug")
			}
			return nil
		},
	}

	// Disable default completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.envFile, "env", ".env", "Environment file to load")
	flags.StringVar(&opts.spec, "spec", "", "OpenAPI document path or URL (default $SPEC_SOURCE)")
	flags.StringVar(&opts.baseURL, "base-url", "", "API base URL (default $BMRS_BASE_URL)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(newDatasetsCmd(opts))
	rootCmd.AddCommand(newDescribeCmd(opts))
	rootCmd.AddCommand(newDownloadCmd(opts))
	rootCmd.AddCommand(newTokenCmd())

	rootCmd.SetUsageTemplate(usageTemplate())
	rootCmd.SetHelpTemplate(usageTemplate())
	rootCmd.SetVersionTemplate(fmt.Sprintf("elexon version %s\n", version))
	return rootCmd
}

// Execute runs the command line and reports the error, if any.
func Execute() int {
	if err := NewRootCommand().Execute(); err != nil {
		ui.PrintError("%v", err)
		return 1
	}
	return 0
}

func usageTemplate() string {
	return `{{if .Long}}{{.Long}}

{{end}}` + ui.Styles.Bold.Render("USAGE") + `
  {{.UseLine}}{{if .HasAvailableSubCommands}}
  {{.CommandPath}} [command]{{end}}

{{if .HasExample}}` + ui.Styles.Bold.Render("EXAMPLES") + `
{{.Example}}

{{end}}{{if .HasAvailableSubCommands}}` + ui.Styles.Bold.Render("COMMANDS") + `{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}

{{end}}{{if .HasAvailableLocalFlags}}` + ui.Styles.Bold.Render("OPTIONS") + `
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}

{{end}}{{if .HasAvailableInheritedFlags}}` + ui.Styles.Bold.Render("GLOBAL OPTIONS") + `
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}

{{end}}{{if .HasAvailableSubCommands}}Use "{{.CommandPath}} [command] --help" for more information about a command.{{end}}
`
}
