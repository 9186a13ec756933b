// Package cmd assembles the command line interface.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Keithclinton/Counter-Front/cmd/hashpass"
	"github.com/Keithclinton/Counter-Front/cmd/serve"
	"github.com/Keithclinton/Counter-Front/internal/conf"
)

// RootCommand creates and returns the root command with all subcommands
// attached.
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "counterfront",
		Short: "Counterfeit alcohol scan backend",
	}

	if err := setupFlags(rootCmd, settings); err != nil {
		cobra.CheckErr(err)
	}

	rootCmd.AddCommand(
		serve.Command(settings),
		hashpass.Command(),
	)

	return rootCmd
}

// setupFlags defines global flags and binds them to viper so command line
// arguments take precedence over the config file.
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) error {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")
	rootCmd.PersistentFlags().StringVar(&settings.Model.Path, "model", viper.GetString("model.path"), "Path to the classifier model file")
	rootCmd.PersistentFlags().Float64VarP(&settings.Model.Threshold, "threshold", "t", viper.GetFloat64("model.threshold"), "Authenticity threshold between 0.0 and 1.0")
	rootCmd.PersistentFlags().StringVarP(&settings.WebServer.Port, "port", "p", viper.GetString("webserver.port"), "Port for the web server")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}

	return nil
}
