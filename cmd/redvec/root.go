// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package main

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sigil-dev/redvec/internal/config"
	"github.com/sigil-dev/redvec/internal/secrets"
	"github.com/sigil-dev/redvec/internal/store"
	_ "github.com/sigil-dev/redvec/internal/store/redis"
	_ "github.com/sigil-dev/redvec/internal/store/sqlite"
	sigilerr "github.com/sigil-dev/redvec/pkg/errors"
)

// skipConfigAnnotation marks commands that must work without a loadable
// config, such as storing the secret the config refers to.
const skipConfigAnnotation = "redvec/skip-config"

// cli carries the state shared by every subcommand of one root command.
type cli struct {
	v   *viper.Viper
	cfg *config.Config
}

// NewRootCmd creates the root redvec command with all subcommands registered.
func NewRootCmd() *cobra.Command {
	c := &cli{v: viper.New()}

	root := &cobra.Command{
		Use:           "redvec",
		Short:         "redvec provisions, loads and queries vector search indexes",
		Long:          "redvec creates a vector index on Redis (or a local SQLite file) if it is missing, loads tagged records in one batch and runs KNN queries against them.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.init(cmd)
		},
	}

	// Global flags; these map to viper keys in initViper.
	root.PersistentFlags().StringP("config", "c", "", "path to config file")
	root.PersistentFlags().String("backend", "", "storage backend (redis or sqlite)")
	root.PersistentFlags().String("env-file", ".env", "dotenv file loaded before the config")
	root.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")

	root.AddCommand(
		c.newHelloCmd(),
		c.newIndexCmd(),
		c.newLoadCmd(),
		c.newGetCmd(),
		c.newQueryCmd(),
		c.newDemoCmd(),
		c.newServeCmd(),
		c.newSecretCmd(),
		c.newConfigCmd(),
		c.newDoctorCmd(),
		newVersionCmd(),
	)

	return root
}

func (c *cli) init(cmd *cobra.Command) error {
	if err := loadDotEnv(cmd); err != nil {
		return err
	}
	verbose, _ := cmd.Flags().GetBool("verbose")
	if skipsConfig(cmd) {
		setupLogging(cmd.ErrOrStderr(), config.LoggingConfig{Level: "info", Format: "text"}, verbose)
		return nil
	}

	if err := initViper(cmd, c.v); err != nil {
		return err
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	c.cfg = cfg

	setupLogging(cmd.ErrOrStderr(), cfg.Logging, verbose)
	config.WarnInsecurePermissions(c.v.ConfigFileUsed())
	return nil
}

func skipsConfig(cmd *cobra.Command) bool {
	for p := cmd; p != nil; p = p.Parent() {
		if p.Annotations[skipConfigAnnotation] == "true" {
			return true
		}
	}
	return false
}

// loadDotEnv loads the --env-file into the process environment. Variables
// already set are not overridden. A missing default .env is not an error.
func loadDotEnv(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("env-file")
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) && !cmd.Flags().Changed("env-file") {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return sigilerr.Errorf(sigilerr.CodeConfigLoadReadFailure, "loading env file %s: %w", path, err)
	}
	return nil
}

// initViper sets up v with defaults, env bindings, flag bindings, and
// optional config file so the standard precedence
// (flag > env > file > defaults) is handled uniformly.
func initViper(cmd *cobra.Command, v *viper.Viper) error {
	config.SetDefaults(v)
	config.SetupEnv(v)

	if cfgFile, _ := cmd.Flags().GetString("config"); cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return sigilerr.Errorf(sigilerr.CodeConfigLoadReadFailure, "reading config file: %w", err)
		}
	} else {
		// SetConfigType is left unset: viper would otherwise also try the
		// bare name, which collides with a ./redvec binary.
		v.SetConfigName("redvec")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/redvec")
		v.AddConfigPath("/etc/redvec")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return sigilerr.Errorf(sigilerr.CodeConfigLoadReadFailure, "reading config: %w", err)
			}
			if path := config.BootstrapConfig(); path != "" {
				v.SetConfigFile(path)
				if err := v.ReadInConfig(); err != nil {
					return sigilerr.Errorf(sigilerr.CodeConfigLoadReadFailure, "reading bootstrapped config: %w", err)
				}
			}
		}
	}

	if f := cmd.Root().PersistentFlags().Lookup("backend"); f != nil && f.Changed {
		if err := v.BindPFlag("storage.backend", f); err != nil {
			return sigilerr.Errorf(sigilerr.CodeCLISetupFailure, "binding backend flag: %w", err)
		}
	}
	if err := v.BindPFlag("verbose", cmd.Root().PersistentFlags().Lookup("verbose")); err != nil {
		return sigilerr.Errorf(sigilerr.CodeCLISetupFailure, "binding verbose flag: %w", err)
	}

	return nil
}

// loadConfig resolves keyring:// values and decodes the validated config.
func (c *cli) loadConfig() (*config.Config, error) {
	if err := secrets.ResolveViperSecrets(c.v, secretStoreFactory()); err != nil {
		return nil, err
	}
	return config.FromViper(c.v)
}

func setupLogging(w io.Writer, cfg config.LoggingConfig, verbose bool) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	slog.SetDefault(slog.New(h).With("run_id", uuid.NewString()))
}

// openBackend opens the configured backend. The caller must Close it.
func (c *cli) openBackend() (store.Backend, error) {
	b, err := store.Open(c.cfg.StorageConfig())
	if err != nil {
		return nil, err
	}
	slog.Debug("storage backend opened", "backend", b.Name())
	return b, nil
}
