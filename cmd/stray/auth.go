package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"straycare/internal/api"
	"straycare/internal/types"
)

var (
	loginEmail    string
	loginPassword string

	registerName     string
	registerUsername string
	registerEmail    string
	registerPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with your email and password",
	RunE: func(cmd *cobra.Command, args []string) error {
		email := loginEmail
		password := loginPassword
		var err error
		if email == "" {
			if email, err = prompt("Email: "); err != nil {
				return err
			}
		}
		if password == "" {
			if password, err = prompt("Password: "); err != nil {
				return err
			}
		}
		creds := types.Credentials{Email: email, Password: password}
		if err := application.Session.Login(cmd.Context(), creds); err != nil {
			return errors.New(api.MessageOf(err, "login failed"))
		}
		user := application.Session.User()
		application.Notify.Success(fmt.Sprintf("Signed in as %s.", user.Name))
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account",
	RunE: func(cmd *cobra.Command, args []string) error {
		input := types.RegisterInput{
			Name:     registerName,
			Username: registerUsername,
			Email:    registerEmail,
			Password: registerPassword,
		}
		var err error
		if input.Name == "" {
			if input.Name, err = prompt("Name: "); err != nil {
				return err
			}
		}
		if input.Username == "" {
			if input.Username, err = prompt("Username: "); err != nil {
				return err
			}
		}
		if input.Email == "" {
			if input.Email, err = prompt("Email: "); err != nil {
				return err
			}
		}
		if input.Password == "" {
			if input.Password, err = prompt("Password: "); err != nil {
				return err
			}
		}
		if err := application.Session.Register(cmd.Context(), input); err != nil {
			return errors.New(api.MessageOf(err, "registration failed"))
		}
		application.Notify.Success("Account created. You are signed in.")
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and clear the saved session",
	RunE: func(cmd *cobra.Command, args []string) error {
		application.Session.Logout(cmd.Context())
		application.Notify.Info("Signed out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(cmd.Context()); err != nil {
			return err
		}
		u := application.Session.User()
		fmt.Printf("%s <%s> (%s)\n", u.Name, u.Email, u.Role)
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "account password")

	registerCmd.Flags().StringVar(&registerName, "name", "", "display name")
	registerCmd.Flags().StringVar(&registerUsername, "username", "", "unique username")
	registerCmd.Flags().StringVar(&registerEmail, "email", "", "account email")
	registerCmd.Flags().StringVar(&registerPassword, "password", "", "account password")
}

func prompt(label string) (string, error) {
	fmt.Fprint(os.Stderr, label)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
