// Copyright (C) 2020-2026, polyd authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package commands implements the polyd CLI command tree.
package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"

	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "polyd",
	Short: "polyd - multi-protocol routing daemon core",
	Long: `polyd hosts the northbound transaction engine and IS-IS, OSPFv2,
OSPFv3, LDP, and BGP protocol instances in a single supervisor process.

Use "polyd [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called once by main.main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: none, built-in defaults apply)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(showCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the polyd version",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.Printf("polyd %s (%s)\n", Version, Commit)
		return nil
	},
}
