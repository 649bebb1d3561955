package users

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"
	"github.com/tbraden/quoteboard/cmd/cli/config"
	"github.com/tbraden/quoteboard/cmd/cli/root"
	"github.com/tbraden/quoteboard/internal/middleware"
)

// ==========================
// CLI Command Init
// ==========================
func init() {
	usersCmd := &cobra.Command{
		Use:   "users",
		Short: "Manage accounts and sessions",
		Long: `Sign up, sign in, or sign out of the Quoteboard API.
Stores the session token locally for future commands.`,
	}

	usersCmd.AddCommand(signupCmd(), signinCmd(), signoutCmd())
	root.GetRoot().AddCommand(usersCmd)
}

// ==========================
// Signup
// ==========================
func signupCmd() *cobra.Command {
	var firstName, lastName, username, email, password string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create a new account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" || password == "" {
				return fmt.Errorf("email and password are required")
			}

			payload := map[string]string{
				"firstName": firstName,
				"lastName":  lastName,
				"username":  username,
				"email":     email,
				"password":  password,
			}
			body, _ := json.Marshal(payload)

			resp, err := http.Post(config.APIURL()+"/api/auth/signup", "application/json", bytes.NewBuffer(body))
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusCreated {
				b, _ := io.ReadAll(resp.Body)
				return fmt.Errorf("API error: %s", string(b))
			}

			fmt.Println("Account created. You can now sign in.")
			return nil
		},
	}

	cmd.Flags().StringVar(&firstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&lastName, "last-name", "", "Last name")
	cmd.Flags().StringVar(&username, "username", "", "Display username")
	cmd.Flags().StringVar(&email, "email", "", "Email address (account key)")
	cmd.Flags().StringVar(&password, "password", "", "Password")

	return cmd
}

// ==========================
// Signin
// ==========================
func signinCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "signin",
		Short: "Sign in and store the session token locally",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" || password == "" {
				return fmt.Errorf("email and password are required")
			}

			payload := map[string]string{"email": email, "password": password}
			body, _ := json.Marshal(payload)

			resp, err := http.Post(config.APIURL()+"/api/auth/signin", "application/json", bytes.NewBuffer(body))
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				b, _ := io.ReadAll(resp.Body)
				return fmt.Errorf("API error: %s", string(b))
			}

			// The session rides in the access_token cookie, not the body.
			var token string
			for _, c := range resp.Cookies() {
				if c.Name == middleware.CookieName {
					token = c.Value
				}
			}
			if token == "" {
				return fmt.Errorf("signin succeeded but no session cookie returned")
			}

			if err := config.SaveToken(token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			fmt.Println("Signed in. Session token stored locally.")
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password")

	return cmd
}

// ==========================
// Signout
// ==========================
func signoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "signout",
		Short: "Sign out and remove the stored session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Best effort against the API; the server call is idempotent.
			resp, err := http.Get(config.APIURL() + "/api/auth/signout")
			if err == nil {
				resp.Body.Close()
			}

			if err := config.ClearToken(); err != nil {
				return err
			}

			fmt.Println("Signed out.")
			return nil
		},
	}
}
