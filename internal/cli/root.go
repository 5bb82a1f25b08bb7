// Package cli implements gigctl, the operator command line for the gig
// booking service.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/iliyamo/gig-booking/internal/config"
)

// RootOptions holds global flags and the configuration source shared by
// every command.
type RootOptions struct {
	ConfigFile string
	// Load reads the configuration.  Tests replace it.
	Load func() (config.Config, error)
}

// NewRootCommand creates the gigctl root command.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{Load: config.Load})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "gigctl",
		Short:         "Operator tooling for the gig booking service",
		Long:          "gigctl applies database migrations, mints development tokens and tails the lifecycle audit stream.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigFile, "config", "c", "", "YAML config file (overrides CONFIG_FILE)")

	cmd.AddCommand(newMigrateCommand(opts))
	cmd.AddCommand(newTokenCommand(opts))
	cmd.AddCommand(newAuditCommand(opts))

	return cmd
}

// loadConfig honours --config before delegating to opts.Load.
func (opts *RootOptions) loadConfig() (config.Config, error) {
	if opts.ConfigFile != "" {
		if err := os.Setenv("CONFIG_FILE", opts.ConfigFile); err != nil {
			return config.Config{}, fmt.Errorf("set CONFIG_FILE: %w", err)
		}
	}
	return opts.Load()
}
