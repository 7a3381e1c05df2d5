package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/getsentry/sentry-go"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cloud66-oss/geotrace/utils"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "geotrace",
	Short: "geotrace resolves IPs and hostnames to geolocation and flags CDN/cloud infrastructure",
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.Version = utils.Version
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/geotrace.yml)")
	rootCmd.PersistentFlags().String("level", "info", "log level")
	rootCmd.PersistentFlags().String("log-format", "json", "log format: json or text")
	rootCmd.PersistentFlags().String("data-dir", defaultDataDir(), "directory holding the mmdb databases")
	rootCmd.PersistentFlags().String("provider", "auto", "geo provider: local, ipinfo or auto")
	rootCmd.PersistentFlags().String("token", "", "ipinfo.io API token")

	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("level"))
	viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("data.dir", rootCmd.PersistentFlags().Lookup("data-dir"))
	viper.BindPFlag("provider", rootCmd.PersistentFlags().Lookup("provider"))
	viper.BindPFlag("providers.ipinfo.token", rootCmd.PersistentFlags().Lookup("token"))
}

func defaultDataDir() string {
	home, err := homedir.Dir()
	if err != nil {
		return ".geotrace"
	}

	return filepath.Join(home, ".geotrace")
}

func configureLogging(_ context.Context) {
	level, err := zerolog.ParseLevel(viper.GetString("log.level"))
	if err != nil {
		fmt.Println("invalid log level")
		os.Exit(1)
	}

	if viper.GetString("log.format") == "text" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	zerolog.SetGlobalLevel(level)
	if level == zerolog.TraceLevel {
		log.Logger = log.With().Caller().Logger()
	}
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fmt.Printf("home directory not found %s\n", err.Error())
			os.Exit(1)
		}

		viper.AddConfigPath(".")
		viper.AddConfigPath(home)
		viper.AddConfigPath("/app")
		viper.SetConfigName("geotrace")
	}

	replacer := strings.NewReplacer("-", "_", ".", "_")
	viper.SetEnvKeyReplacer(replacer)
	viper.SetEnvPrefix("GEOTRACE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}

	ctx := context.Background()
	configureLogging(ctx)

	// initialize sentry if a DSN is configured via sentry.dsn in the
	// config file or the GEOTRACE_SENTRY_DSN environment variable
	if dsn := viper.GetString("sentry.dsn"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: dsn}); err != nil {
			log.Warn().Err(err).Msg("failed to initialize Sentry")
		} else {
			log.Info().Msg("Sentry error tracking enabled")
		}
	}

	viper.WatchConfig()
	viper.OnConfigChange(func(e fsnotify.Event) {
		ctx := context.Background()
		log.Info().Str("file", e.Name).Msg("reloading config")
		configureLogging(ctx)
	})
}
