package main

import (
	"fmt"
	"syscall"

	"bookhive/auth"
	"bookhive/db"
	"bookhive/logger"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func setupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Create the database schema and the default admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, conn, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer logger.Sync()
			defer conn.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "Database ready at %s\n", cfg.DatabasePath)
			return nil
		},
	}
}

func adminPasswordCmd() *cobra.Command {
	var username string
	cmd := &cobra.Command{
		Use:   "admin-password",
		Short: "Change the password of an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, conn, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer logger.Sync()
			defer conn.Close()

			password, err := readPassword(cmd, "New password: ")
			if err != nil {
				return err
			}
			confirm, err := readPassword(cmd, "Repeat password: ")
			if err != nil {
				return err
			}
			if password != confirm {
				return fmt.Errorf("passwords do not match")
			}

			service := auth.NewService(db.NewUserStore(conn))
			if err := service.ChangePassword(cmd.Context(), username, password); err != nil {
				return fmt.Errorf("change password for %q: %w", username, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Password updated for %s\n", username)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", db.DefaultAdminUsername, "account to update")
	return cmd
}

// readPassword reads a line from the terminal without echo.
func readPassword(cmd *cobra.Command, prompt string) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	b, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(cmd.OutOrStdout())
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(b), nil
}
