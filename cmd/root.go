package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Bitlatte/redefine/internal/config"
	"github.com/Bitlatte/redefine/internal/logging"
)

var cfgFile string
var appConfig config.Config
var logger = log.StandardLogger()

var rootCmd = &cobra.Command{
	Use:   "redefine",
	Short: "Builds and serves the Redefine website",
	Long: `redefine loads the site's content collections (authors, blog posts and
policy pages), validates every entry against its collection schema, and
renders the static site together with its RSS feed and sitemap.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeConfig(cmd)
	},
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
}

func initializeConfig(_ *cobra.Command) error {
	v := viper.New()

	for key, value := range config.Defaults {
		v.SetDefault(key, value)
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("REDEFINE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	configErr := v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if configErr != nil && !errors.As(configErr, &notFound) {
		return fmt.Errorf("failed to read config file: %w", configErr)
	}
	if configErr != nil && cfgFile != "" {
		return fmt.Errorf("config file %s not found: %w", cfgFile, configErr)
	}

	if err := v.Unmarshal(&appConfig); err != nil {
		return fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if err := appConfig.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	l, err := logging.New(os.Stderr, appConfig.LogLevel, appConfig.LogFormat)
	if err != nil {
		return err
	}
	logger = l

	if configErr != nil {
		logger.Info("No config file found, using defaults and environment variables")
	} else {
		logger.WithField("file", v.ConfigFileUsed()).Info("Using config file")
	}
	return nil
}
