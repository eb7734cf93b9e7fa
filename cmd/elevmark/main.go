package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"elevation-marker/internal/config"
	"elevation-marker/internal/logging"
)

var (
	logger = logging.Nop()

	rootCmd = &cobra.Command{
		Use:           "elevmark",
		Short:         "Place elevation markers on building elements across section views",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	rootCmd.PersistentFlags().String("config", "", "path to a YAML or JSON config file")
	rootCmd.PersistentFlags().String("scene", "", "scene file (YAML)")
	rootCmd.PersistentFlags().String("output", "", "output directory (default: <scene dir>/elevmark-out)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (default: info)")
	rootCmd.PersistentFlags().String("log-format", "", "log format: text or json (default: text)")

	bindFlags(rootCmd.PersistentFlags(), "config", "scene", "output", "log-level", "log-format")

	viper.SetEnvPrefix("elevmark")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	rootCmd.AddCommand(placeCmd, historyCmd, inspectCmd)
}

func bindFlags(fs *pflag.FlagSet, names ...string) {
	for _, name := range names {
		if err := viper.BindPFlag(name, fs.Lookup(name)); err != nil {
			panic(err)
		}
	}
}

// loadConfig reads the config file named by --config (if any), applies flag
// and environment overrides, and sets up logging.
func loadConfig() (config.Config, error) {
	var cfg config.Config
	if path := viper.GetString("config"); path != "" {
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return cfg, err
		}
	}

	cfg.Resolve(config.Flags{
		Scene:     viper.GetString("scene"),
		OutputDir: viper.GetString("output"),
		Direction: viper.GetString("direction"),
		Side:      viper.GetString("side"),
		Template:  viper.GetString("template"),
		Face:      viper.GetString("face"),
		Selection: viper.GetStringSlice("select"),
		AnyFace:   viper.GetBool("any-face"),
		Preview:   viper.GetString("preview"),
		NoPreview: viper.GetBool("no-preview"),
		LogLevel:  viper.GetString("log-level"),
		LogFormat: viper.GetString("log-format"),
	})
	if viper.GetBool("reject-anti-aligned") {
		cfg.RejectAntiAligned = true
	}

	l, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return cfg, err
	}
	logger = l
	slog.SetDefault(l)
	return cfg, nil
}

func requireScene(cfg config.Config) error {
	if cfg.Scene == "" {
		return errors.New("no scene given; use --scene or the config file")
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
