// Package config provides CLI commands for configuration management.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/klytics/xlnotes/internal/config"
)

// NewCommand returns the config command group.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage xlnotes configuration",
		Long:  "View and modify xlnotes settings stored in ~/.xlnotes/config.yaml.",
	}

	cmd.AddCommand(newShowCommand())
	cmd.AddCommand(newSetCommand())
	cmd.AddCommand(newGetCommand())
	cmd.AddCommand(newPathCommand())

	return cmd
}

func newShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			jsonFlag, _ := cmd.Flags().GetBool("json")
			if jsonFlag {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(cfg)
			}

			fmt.Println("Translation:")
			fmt.Printf("  translate.enabled      %v\n", cfg.Translate.Enabled)
			fmt.Printf("  translate.provider     %s\n", cfg.Translate.Provider)
			fmt.Printf("  translate.api_key      %s\n", maskKey(cfg.Translate.APIKey))
			fmt.Printf("  translate.region       %s\n", orUnset(cfg.Translate.Region))
			fmt.Printf("  translate.target_lang  %s\n", cfg.Translate.TargetLang)
			fmt.Println("Output:")
			fmt.Printf("  output.format          %s\n", cfg.Output.Format)
			fmt.Printf("  output.color           %v\n", cfg.Output.Color)
			return nil
		},
	}
}

func newSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := setKey(cfg, args[0], args[1]); err != nil {
				return err
			}
			if err := config.Save(cfg); err != nil {
				return err
			}
			fmt.Printf("Set %s = %s\n", args[0], args[1])
			return nil
		},
	}
}

func newGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			val, err := getKey(cfg, args[0])
			if err != nil {
				return err
			}
			if val == "" {
				fmt.Printf("%s: (not set)\n", args[0])
			} else {
				fmt.Printf("%s: %s\n", args[0], val)
			}
			return nil
		},
	}
}

func newPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show config file path",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(filepath.Join(config.Dir(), "config.yaml"))
		},
	}
}

func setKey(cfg *config.Config, key, value string) error {
	switch key {
	case "translate.enabled":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s must be true or false", key)
		}
		cfg.Translate.Enabled = b
	case "translate.provider":
		if value != "azure" && value != "none" {
			return fmt.Errorf("unsupported provider: %s (supported: azure, none)", value)
		}
		cfg.Translate.Provider = value
	case "translate.api_key":
		cfg.Translate.APIKey = value
	case "translate.region":
		cfg.Translate.Region = value
	case "translate.target_lang":
		cfg.Translate.TargetLang = value
	case "output.format":
		cfg.Output.Format = value
	case "output.color":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s must be true or false", key)
		}
		cfg.Output.Color = b
	default:
		return fmt.Errorf("unknown configuration key: %s (run 'xlnotes config show' to list keys)", key)
	}
	return nil
}

func getKey(cfg *config.Config, key string) (string, error) {
	switch key {
	case "translate.enabled":
		return strconv.FormatBool(cfg.Translate.Enabled), nil
	case "translate.provider":
		return cfg.Translate.Provider, nil
	case "translate.api_key":
		return maskKey(cfg.Translate.APIKey), nil
	case "translate.region":
		return cfg.Translate.Region, nil
	case "translate.target_lang":
		return cfg.Translate.TargetLang, nil
	case "output.format":
		return cfg.Output.Format, nil
	case "output.color":
		return strconv.FormatBool(cfg.Output.Color), nil
	default:
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
}

func maskKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 8 {
		return "********"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func orUnset(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}
