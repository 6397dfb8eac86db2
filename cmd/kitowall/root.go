package main

import (
	"os"

	"github.com/KitotsuMolina/Kitowall/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:           "kitowall",
	Short:         "Wallpaper rotation for Wayland outputs",
	Long:          `kitowall picks, downloads, caches and applies wallpapers per output from local folders and remote packs.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		printError(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default ~/.config/kitowall/config.json)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
}

func initConfig() {
	viper.SetEnvPrefix("KITOWALL")
	viper.AutomaticEnv()
}

// newLogger creates the zap logger; logs go to stderr so stdout stays JSON
func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// bootstrap builds the logger and loads the configuration
func bootstrap() (*zap.Logger, *config.Config, error) {
	logger, err := newLogger(viper.GetBool("debug"))
	if err != nil {
		return nil, nil, err
	}

	cfg, err := config.Load(logger, viper.GetString("config"))
	if err != nil {
		return nil, nil, err
	}
	return logger, cfg, nil
}
