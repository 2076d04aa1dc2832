package cli

import (
	"github.com/spf13/cobra"
)

// GlobalFlags holds global flag values
type GlobalFlags struct {
	ConfigFile string
	Verbose    bool
	Quiet      bool
	LogFile    string
	LogFormat  string
	LogLevel   string
}

var globalFlags GlobalFlags

// AddGlobalFlags adds global flags to the root command
func AddGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(
		&globalFlags.ConfigFile,
		"config",
		"",
		"config file (default is $HOME/.config/sidediff/config.yaml)",
	)
	cmd.PersistentFlags().BoolVarP(
		&globalFlags.Verbose,
		"verbose",
		"v",
		false,
		"verbose output (debug logging)",
	)
	cmd.PersistentFlags().BoolVarP(
		&globalFlags.Quiet,
		"quiet",
		"q",
		false,
		"suppress non-error output",
	)
	cmd.PersistentFlags().StringVar(&globalFlags.LogFile, "log-file", "", "write logs to file instead of stderr")
	cmd.PersistentFlags().StringVar(&globalFlags.LogFormat, "log-format", "", "log format: text, json")
	cmd.PersistentFlags().StringVar(&globalFlags.LogLevel, "log-level", "", "log level: debug, info, warn, error")
}

// GetGlobalFlags returns the global flags
func GetGlobalFlags() *GlobalFlags {
	return &globalFlags
}

// engineFlags are shared by every command that runs a comparison
type engineFlags struct {
	Remote     string
	Format     string
	TabWidth   int
	DrainTails bool
	Runes      bool
	Bandwidth  string
}

func addEngineFlags(cmd *cobra.Command, f *engineFlags) {
	cmd.Flags().StringVar(&f.Remote, "remote", "", "base URL of the counterpart host serving the right side")
	cmd.Flags().StringVarP(&f.Format, "format", "f", "", "output format: html, page, json, text")
	cmd.Flags().IntVar(&f.TabWidth, "tab-width", 4, "spaces per tab")
	cmd.Flags().BoolVar(&f.DrainTails, "drain-tails", false, "align the tail of the longer text instead of dropping it")
	cmd.Flags().BoolVar(&f.Runes, "runes", false, "diff characters as Unicode code points instead of bytes")
	cmd.Flags().StringVar(&f.Bandwidth, "bandwidth", "", "limit remote transfer rate (e.g. 10M, 512K)")
}
