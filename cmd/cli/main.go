package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

func main() {
	rootCmd := &cobra.Command{
		Use:           "walletlab",
		Short:         "Filter and score wallet datasets from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", os.Getenv("CONFIG_FILE"), "Path to a walletlab YAML config file")

	rootCmd.AddCommand(
		newInspectCmd(),
		newFilterCmd(),
		newAnalyzeCmd(),
		newMetadataCmd(),
		newConfigCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
