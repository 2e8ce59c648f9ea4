// Command budgetctl performs operator tasks against the budget database:
// applying migrations, creating accounts and verifying them by hand.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	cmd := newRootCommand(stdin)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	return cmd.Execute()
}

type rootOptions struct {
	dbPath string
}

func newRootCommand(stdin io.Reader) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "budgetctl",
		Short:         "Administer a budgetplanner database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	defaultDB := "./data/budget.db"
	if path := os.Getenv("SQLITE_DB_PATH"); path != "" {
		defaultDB = path
	}
	cmd.PersistentFlags().StringVar(&opts.dbPath, "db", defaultDB, "path to the SQLite database")

	cmd.AddCommand(newMigrateCommand(opts))
	cmd.AddCommand(newAddUserCommand(opts, stdin))
	cmd.AddCommand(newVerifyCommand(opts))

	return cmd
}
