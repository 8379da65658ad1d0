// Command inkwell runs the Inkwell blogging backend and its maintenance tasks.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:           "inkwell",
	Short:         "Inkwell blogging backend",
	Version:       version + " (" + buildDate + ")",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file seeding the environment (missing is fine)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "inkwell:", err)
		os.Exit(1)
	}
}
