package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/ownership-manager/pkg/config"
)

var configurationCmd = &cobra.Command{
	Use:   "configuration",
	Short: "Inspect ownerctl configuration",
	Long:  `Inspect ownerctl configuration settings.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'configuration' requires a subcommand (show)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

var configurationShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show configuration attributes and their sources",
	Long: `Show configuration attributes and their sources.

Values are read from the config file, a .env file and the environment,
in that order, later sources winning. Secrets are masked.

Config file location: /etc/ownership/config/ownership.yml (or OWNERSHIP_CONFIG_PATH)

Example:
  ownerctl configuration show
  ownerctl configuration show --output json`,
	Run: func(cmd *cobra.Command, args []string) {
		output, _ := cmd.Flags().GetString("output")
		validate, _ := cmd.Flags().GetBool("validate")

		if err := showConfiguration(output, validate); err != nil {
			fail("Failed to show configuration: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(configurationCmd)
	configurationCmd.AddCommand(configurationShowCmd)
	configurationShowCmd.Flags().StringP("output", "o", "text", "Output format (text or json)")
	configurationShowCmd.Flags().Bool("validate", false, "exit non-zero when the configuration is incomplete")
}

func showConfiguration(output string, validate bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if output == "json" {
		jsonOutput, err := cfg.FormatJSON()
		if err != nil {
			return err
		}
		fmt.Println(jsonOutput)
	} else {
		fmt.Print(cfg.FormatText())
	}

	if validate {
		return cfg.Validate()
	}
	return nil
}
