package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "capcol",
	Short: "Drive a capped collection backed by Redis",
	Long: "capcol is a command-line client for the capped-collection algorithm: " +
		"a Redis-backed store of many FIFO-evicted lists, atomic under server-side scripting.",
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("redis-addr", "127.0.0.1:6379", "Redis address (host:port)")
	rootCmd.PersistentFlags().Int("redis-db", 0, "Redis logical database")
	rootCmd.PersistentFlags().String("prefix", "capcol", "key-space prefix namespacing this deployment")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warning, error, silent")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(newInsertCmd())
	rootCmd.AddCommand(newUpdateCmd())
	rootCmd.AddCommand(newUpsertCmd())
	rootCmd.AddCommand(newReceiveCmd())
	rootCmd.AddCommand(newPopCmd())
	rootCmd.AddCommand(newInfoCmd())
	rootCmd.AddCommand(newListInfoCmd())
	rootCmd.AddCommand(newOldestTimeCmd())
	rootCmd.AddCommand(newDropCmd())
	rootCmd.AddCommand(newClearCmd())
	rootCmd.AddCommand(newDropListCmd())
	rootCmd.AddCommand(newResizeCmd())
	rootCmd.AddCommand(newPingCmd())
	rootCmd.AddCommand(newVerifyCmd())
	rootCmd.AddCommand(newServeCmd())
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the capcol client version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version)
	},
}

// Execute runs the root command; main calls this directly.
func Execute() error {
	return rootCmd.Execute()
}
