package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	configfile "github.com/halcyon-forensics/imgtriage/internal/adapters/driven/config/file"
	"github.com/halcyon-forensics/imgtriage/internal/core/domain"
)

// configKeys maps every recognised key to its value type.
var configKeys = map[string]string{
	"triage.row_limit":            "int",
	"triage.min_rows":             "int",
	"triage.workers":              "int",
	"triage.command_timeout_secs": "int",
	"triage.copy_timeout_secs":    "int",
	"classifier.script_lo":        "int",
	"classifier.script_hi":        "int",
	"classifier.denylist":         "list",
	"catalog.rules_file":          "string",
}

var configFile string

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage imgtriage configuration",
	Long: `View and set pipeline configuration. Values are stored in a TOML file
(default ~/.imgtriage/config.toml) and can be overridden per run by flags.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print one configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value and persist it immediately.

List values (classifier.denylist) take a comma-separated string.`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := configfile.NewConfigStore(configFile)
		if err != nil {
			return err
		}
		cmd.Println(cfg.Path())
		return nil
	},
}

func init() {
	configCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"config file (default ~/.imgtriage/config.toml)")
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	cfg, err := configfile.NewConfigStore(configFile)
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(configKeys))
	for key := range configKeys {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	cmd.Printf("Configuration (%s)\n\n", cfg.Path())
	for _, key := range keys {
		val, ok := cfg.Get(key)
		if !ok {
			cmd.Printf("  %-28s (not set)\n", key)
			continue
		}
		cmd.Printf("  %-28s %v\n", key, val)
	}
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	key := args[0]
	if _, known := configKeys[key]; !known {
		return fmt.Errorf("%w: unknown config key %q", domain.ErrInvalidInput, key)
	}

	cfg, err := configfile.NewConfigStore(configFile)
	if err != nil {
		return err
	}
	val, ok := cfg.Get(key)
	if !ok {
		cmd.Println("(not set)")
		return nil
	}
	cmd.Printf("%v\n", val)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, raw := args[0], args[1]
	kind, known := configKeys[key]
	if !known {
		return fmt.Errorf("%w: unknown config key %q", domain.ErrInvalidInput, key)
	}

	cfg, err := configfile.NewConfigStore(configFile)
	if err != nil {
		return err
	}

	var value any
	switch kind {
	case "int":
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%w: %s expects an integer, got %q", domain.ErrInvalidInput, key, raw)
		}
		value = n
	case "list":
		parts := strings.Split(raw, ",")
		items := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				items = append(items, p)
			}
		}
		value = items
	default:
		value = raw
	}

	if err := cfg.Set(key, value); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	cmd.Printf("%s = %v\n", key, value)
	return nil
}
