package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	go_dbclient "github.com/PayRam/go-dbclient"
	"github.com/PayRam/go-dbclient/config"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	envPrefix string
	timeout   time.Duration
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dbctl",
		Short: "Maintenance tool for the back-office database",
		Long: `dbctl opens the database described by the environment and runs maintenance tasks.

Settings are read from an optional .env file and from environment variables such as
DBCLIENT_DATABASE_DRIVER, DBCLIENT_DATABASE_PATH or DBCLIENT_DATABASE_HOST.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&envPrefix, "env-prefix", config.DefaultPrefix, "Prefix of the environment variables to read")
	cmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Deadline for the command")

	cmd.AddCommand(migrateCmd())
	cmd.AddCommand(pingCmd())
	cmd.AddCommand(tablesCmd())
	cmd.AddCommand(queryCmd())

	return cmd
}

// open loads configuration and connects. Migrations run as part of opening.
func open() (*go_dbclient.DataService, error) {
	cfg, err := config.Load(envPrefix)
	if err != nil {
		return nil, err
	}
	return go_dbclient.Open(cfg)
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open()
			if err != nil {
				return err
			}
			defer s.Close()

			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

func pingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the database is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open()
			if err != nil {
				return err
			}
			defer s.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			if err := s.HealthCheck(ctx); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
}

func tablesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List the registered tables and their columns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open()
			if err != nil {
				return err
			}
			defer s.Close()

			return writeJSON(cmd.OutOrStdout(), s.Tables())
		},
	}
}

func queryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "query SQL [params...]",
		Short: "Run a parameterized statement and print the rows as JSON",
		Long: `Run a statement with positional ? parameters and print the resulting rows.

Statements that look like injection attempts (stacked DROP/DELETE/TRUNCATE/ALTER,
UNION SELECT, comments, EXEC, script tags) are refused without being executed.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open()
			if err != nil {
				return err
			}
			defer s.Close()

			params := make([]interface{}, 0, len(args)-1)
			for _, arg := range args[1:] {
				params = append(params, arg)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			res := go_dbclient.Raw[map[string]interface{}](ctx, s, args[0], params...)
			if res.Error != nil {
				return res.Error
			}
			return writeJSON(cmd.OutOrStdout(), res.Data)
		},
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
