package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"

	"budgetplanner/internal/identity"
	"budgetplanner/internal/services"
	"budgetplanner/internal/storage"
)

func newMigrateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := storage.RunMigrations(opts.dbPath)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Schema at version %d (%s)\n", version, opts.dbPath)
			return nil
		},
	}
}

func newAddUserCommand(opts *rootOptions, stdin io.Reader) *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "adduser",
		Short: "Create an account that can log in without email verification",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if password == "" {
				fmt.Fprint(out, "Password: ")
				var err error
				password, err = readPassword(stdin)
				if err != nil {
					return fmt.Errorf("failed to read password: %w", err)
				}
				fmt.Fprintln(out)
			}
			if strings.TrimSpace(password) == "" {
				return fmt.Errorf("password cannot be empty")
			}

			return withAccounts(opts, func(accounts *services.AccountService) error {
				user, err := accounts.CreateVerifiedUser(cmd.Context(), name, email, password)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "User %s created with ID %d\n", user.Email, user.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newVerifyCommand(opts *rootOptions) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Mark an account as verified",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAccounts(opts, func(accounts *services.AccountService) error {
				user, err := accounts.VerifyByEmail(cmd.Context(), email)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "User %s verified\n", user.Email)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "login email")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

// withAccounts opens the database for the duration of fn. Operator
// commands never send email or issue tokens.
func withAccounts(opts *rootOptions, fn func(*services.AccountService) error) error {
	repo, err := storage.NewSQLiteRepository(opts.dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer repo.Close()

	accounts := services.NewAccountService(repo, identity.NewHasher(bcrypt.DefaultCost), nil, nil, services.Links{})
	return fn(accounts)
}

func readPassword(stdin io.Reader) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	// Pipes and tests
	scanner := bufio.NewScanner(stdin)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
