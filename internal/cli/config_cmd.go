package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rshade/budgettree/internal/config"
)

// newConfigCmd creates the "config" command group.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the budgettree configuration",
	}
	cmd.AddCommand(newConfigInitCmd(), newConfigShowCmd())
	return cmd
}

// newConfigInitCmd creates the config init command writing the defaults to
// the user config file.
func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration file with default values",
		Example: `  # Create ~/.budgettree/config.yaml
  budgettree config init

  # Point the default source at a local checkout, overwriting the file
  budgettree config init --source ./haushalt --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := config.ConfigPath()
			if !force {
				_, err := os.Stat(path)
				if err == nil {
					return errors.New("configuration file already exists, use --force to overwrite")
				}
				if !os.IsNotExist(err) {
					return fmt.Errorf("cannot access config path %s: %w", path, err)
				}
			}

			cfg := config.Default()
			if source, _ := cmd.Flags().GetString("source"); source != "" {
				cfg.Source.Base = source
			}
			if err := cfg.Save(path); err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			cmd.Printf("Configuration initialized successfully\n")
			cmd.Printf("Configuration file: %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing configuration file")

	return cmd
}

// newConfigShowCmd prints the effective configuration after file, env and flag overrides.
func newConfigShowCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.GetGlobalConfig()
			switch output {
			case "yaml", "":
				data, err := yaml.Marshal(cfg)
				if err != nil {
					return fmt.Errorf("marshalling config: %w", err)
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			case formatJSON:
				return writeJSON(cmd.OutOrStdout(), cfg)
			default:
				return fmt.Errorf("unsupported output format %q (want yaml or json)", output)
			}
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "yaml", "output format: yaml or json")

	return cmd
}
