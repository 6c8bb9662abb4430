package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	apperr "github.com/matzehuels/sceneforest/pkg/errors"
)

// configCommand creates the config command with subcommands.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
		// Replaces the root pre-run: the file may not exist yet.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c.applyVerbosity(cmd)
			return nil
		},
	}

	cmd.AddCommand(c.configInitCommand())
	cmd.AddCommand(c.configPathCommand())

	return cmd
}

// configPath returns --config or the XDG location.
func (c *CLI) configPath() (string, error) {
	if c.cfgFile != "" {
		return c.cfgFile, nil
	}
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}

func (c *CLI) configInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := c.configPath()
			if err != nil {
				return fmt.Errorf("get config dir: %w", err)
			}
			if _, err := os.Stat(path); err == nil && !force {
				return apperr.New(apperr.ErrCodeInvalidInput, "%s already exists (use --force to overwrite)", path)
			}
			if err := writeConfig(path, DefaultConfig()); err != nil {
				return fmt.Errorf("write config: %w", err)
			}
			printSuccess("Wrote default config")
			printFile(path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	return cmd
}

func (c *CLI) configPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := c.configPath()
			if err != nil {
				return fmt.Errorf("get config dir: %w", err)
			}
			fmt.Fprintln(stdout, path)
			return nil
		},
	}
}
