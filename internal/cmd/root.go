package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile   string
	outputFmt string
)

// rootCmd is the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "logsort",
	Short: "logsort — organize log files per service and audit them for errors",
	Long: `logsort classifies raw log files named <service>_<YYYY-MM-DD>.log into
per-service directories, then audits the organized tree for occurrences of
the word "error" and writes a plain-text report.

Re-running is safe: files already at their destination are skipped, never
overwritten.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: $HOME/.logsort.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "text", "output format: text, json")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigName(".logsort")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("logsort")
	viper.AutomaticEnv()
	_ = viper.ReadInConfig()
}
