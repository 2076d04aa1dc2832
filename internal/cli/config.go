package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/sdejongh/sidediff/pkg/config"
)

// NewConfigCommand creates the config command
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long:  `View or create the sidediff configuration file.`,
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigInitCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			secret := "(not set)"
			if cfg.Remote.Secret != "" {
				secret = "(set)"
			}
			bandwidth := cfg.Remote.BandwidthLimit
			if bandwidth == "" {
				bandwidth = "unlimited"
			}

			fmt.Fprintf(out, "Tab Width: %d\n", cfg.Compare.TabWidth)
			fmt.Fprintf(out, "Drain Tails: %t\n", cfg.Compare.DrainTails)
			fmt.Fprintf(out, "Char Unit: %s\n", cfg.Compare.CharUnit)
			fmt.Fprintf(out, "Remote URL: %s\n", cfg.Remote.URL)
			fmt.Fprintf(out, "Remote Secret: %s\n", secret)
			fmt.Fprintf(out, "Remote Timeout: %s\n", cfg.Remote.Timeout)
			fmt.Fprintf(out, "Bandwidth Limit: %s\n", bandwidth)
			fmt.Fprintf(out, "Max Fetch Size: %s\n", humanize.IBytes(uint64(cfg.Remote.MaxBytes)))
			fmt.Fprintf(out, "Serve Listen: %s\n", cfg.Serve.Listen)
			fmt.Fprintf(out, "Serve Root: %s\n", cfg.Serve.Root)
			fmt.Fprintf(out, "Max Skew: %s\n", cfg.Serve.MaxSkew)
			fmt.Fprintf(out, "Max Workers: %d\n", cfg.Batch.MaxWorkers)
			fmt.Fprintf(out, "Exclude: %v\n", cfg.Batch.Exclude)
			fmt.Fprintf(out, "Output Format: %s\n", cfg.Output.Format)
			fmt.Fprintf(out, "Log Format: %s\n", cfg.Logging.Format)
			fmt.Fprintf(out, "Log Level: %s\n", cfg.Logging.Level)

			return nil
		},
	}
}

func newConfigInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := globalFlags.ConfigFile
			if path == "" {
				var err error
				path, err = config.DefaultConfigPath()
				if err != nil {
					return err
				}
			}

			cfg := config.Default()
			if err := config.SaveToFile(cfg, path); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Configuration file created at: %s\n", path)
			return nil
		},
	}
}
