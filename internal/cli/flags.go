package cli

import (
	"io"

	"github.com/spf13/cobra"

	"cxkit/internal/config"
)

// CommandFlags holds the flag values shared by cxkit commands.
type CommandFlags struct {
	// ConfigPath is the directory holding config.yaml.
	ConfigPath string
	// OutputFormat is one of table, wide, json or yaml.
	OutputFormat string
	// NoHeaders suppresses table headers and summaries.
	NoHeaders bool
	// Quiet suppresses spinners.
	Quiet bool
}

// RegisterCommonFlags registers the shared flags on cmd:
//   - --config-path: configuration directory
//   - --output/-o: output format, default "table"
//   - --no-headers: suppress header row in table output
//   - --quiet/-q: suppress progress spinners
func RegisterCommonFlags(cmd *cobra.Command, flags *CommandFlags) {
	cmd.PersistentFlags().StringVar(&flags.ConfigPath, "config-path", config.DefaultConfigPath(), "Configuration directory")
	cmd.PersistentFlags().StringVarP(&flags.OutputFormat, "output", "o", string(OutputFormatTable), "Output format (table, wide, json, yaml)")
	cmd.PersistentFlags().BoolVar(&flags.NoHeaders, "no-headers", false, "Suppress header row in table output")
	cmd.PersistentFlags().BoolVarP(&flags.Quiet, "quiet", "q", false, "Suppress progress spinners")
}

// Printer validates the output flags and returns a Printer writing to out.
func (f *CommandFlags) Printer(out io.Writer) (*Printer, error) {
	if err := ValidateOutputFormat(f.OutputFormat); err != nil {
		return nil, err
	}
	return &Printer{Out: out, Format: OutputFormat(f.OutputFormat), NoHeaders: f.NoHeaders}, nil
}

// LoadConfig loads the configuration under ConfigPath with the environment
// applied.
func (f *CommandFlags) LoadConfig() (config.Config, error) {
	return config.Load(f.ConfigPath)
}
