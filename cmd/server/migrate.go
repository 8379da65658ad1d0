package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/and161185/inkwell/internal/config"
	"github.com/and161185/inkwell/internal/migrate"
)

var dsnFlag string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	PersistentPreRunE: func(*cobra.Command, []string) error {
		if err := config.LoadEnvFile(envFile); err != nil {
			return err
		}
		if dsnFlag == "" {
			dsnFlag = config.DatabaseURL()
		}
		return nil
	},
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return migrate.Up(cmd.Context(), dsnFlag)
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the latest migration",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return migrate.Down(cmd.Context(), dsnFlag)
	},
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current schema version",
	RunE: func(cmd *cobra.Command, _ []string) error {
		v, err := migrate.Version(cmd.Context(), dsnFlag)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), v)
		return nil
	},
}

func init() {
	migrateCmd.PersistentFlags().StringVar(&dsnFlag, "dsn", "", "PostgreSQL DSN (default: DATABASE_URL)")
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateVersionCmd)
	rootCmd.AddCommand(migrateCmd)
}
