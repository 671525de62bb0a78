package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/example/englearn/internal/config"
	"github.com/example/englearn/internal/logging"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:           "englearn",
	Short:         "English learning backend: lessons, quizzes, writing assessment and leaderboard",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&envFile, "env-file", "", "load environment from this file instead of ./.env")
	flags.String("db-type", "", "database type (sqlite or postgres)")
	flags.String("database-url", "", "database DSN or sqlite file path")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-format", "", "log format (json or text)")

	bindFlagToViper("db_type", flags.Lookup("db-type"))
	bindFlagToViper("database_url", flags.Lookup("database-url"))
	bindFlagToViper("log_level", flags.Lookup("log-level"))
	bindFlagToViper("log_format", flags.Lookup("log-format"))
}

func bindFlagToViper(key string, flag *pflag.Flag) {
	if flag == nil {
		return
	}
	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// loadRuntime reads the configuration and builds the logger shared by all commands
func loadRuntime() (*config.Config, *logrus.Logger, error) {
	var envFiles []string
	if envFile != "" {
		envFiles = append(envFiles, envFile)
	}
	cfg, err := config.Load(viper.GetViper(), envFiles...)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, logger, nil
}
