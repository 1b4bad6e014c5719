// Package main is the dupscan command: near-duplicate detection over a
// document corpus.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configPath string
	envName    string
)

var rootCmd = &cobra.Command{
	Use:   "dupscan",
	Short: "Find near-duplicate documents in a corpus",
	Long: `dupscan compares every pair of documents in a collection with a
Ratcliff/Obershelp similarity ratio and reports the pairs scoring at or
above a threshold, highest first.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config YAML (default: config/<ENV>.yaml)")
	rootCmd.PersistentFlags().StringVar(&envName, "env", "", "Environment name (default: $ENV or local)")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
