package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"storefront/internal/storefront"
)

var (
	accountName     string
	accountEmail    string
	accountPassword string
	accountConfirm  string
)

// accountCmd manages the local accounts
var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Sign up, log in and out",
	Long: `Accounts are stored locally in the workspace. Passwords are hashed with bcrypt.

Examples:
  shop account signup --name "Ada Lovelace" --email ada@example.com --password engine --confirm engine
  shop account login --email ada@example.com --password engine
  shop account whoami`,
}

var accountSignupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account and sign in",
	RunE:  runSignup,
}

var accountLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in",
	RunE:  runLogin,
}

var accountLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out",
	RunE:  runLogout,
}

var accountWhoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	RunE:  runWhoami,
}

func runSignup(cmd *cobra.Command, args []string) error {
	s, err := openShop()
	if err != nil {
		return err
	}
	defer s.Close()

	res, err := s.app.Dispatch(context.Background(), storefront.Signup{
		FullName: accountName,
		Email:    accountEmail,
		Password: accountPassword,
		Confirm:  accountConfirm,
	})
	if err != nil {
		return err
	}
	fmt.Printf("%s! Your account was created.\n", res.Message)
	return nil
}

func runLogin(cmd *cobra.Command, args []string) error {
	s, err := openShop()
	if err != nil {
		return err
	}
	defer s.Close()

	res, err := s.app.Dispatch(context.Background(), storefront.Login{Email: accountEmail, Password: accountPassword})
	if err != nil {
		return err
	}
	fmt.Println(res.Message)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	s, err := openShop()
	if err != nil {
		return err
	}
	defer s.Close()

	if _, err := s.app.Dispatch(context.Background(), storefront.Logout{}); err != nil {
		return err
	}
	fmt.Println("Signed out")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	s, err := openShop()
	if err != nil {
		return err
	}
	defer s.Close()

	cur, ok := s.app.Accounts().Current()
	if !ok {
		fmt.Println("Not signed in")
		return nil
	}
	fmt.Printf("%s <%s>\n", cur.Name, cur.Email)
	return nil
}
