package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/logiops360/logiops-cli/internal/session"
	"github.com/logiops360/logiops-cli/pkg/logiops"
)

var (
	authEmail    string
	authPassword string
	authProfile  string
	authNom      string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and persist the session",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		env, err := initEnv(ctx, "cli")
		if err != nil {
			return err
		}
		defer env.Close()

		s, err := env.Sessions.Login(ctx, logiops.Credentials{
			Email:      authEmail,
			Password:   authPassword,
			TypeProfil: authProfile,
		})
		if err != nil {
			return eris.Wrap(err, "login")
		}
		formatSignedIn(cmd.OutOrStdout(), s)
		return nil
	},
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account and persist the session",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		env, err := initEnv(ctx, "cli")
		if err != nil {
			return err
		}
		defer env.Close()

		s, err := env.Sessions.Signup(ctx, logiops.SignupRequest{
			Nom:        authNom,
			Email:      authEmail,
			Password:   authPassword,
			TypeProfil: authProfile,
		})
		if err != nil {
			return eris.Wrap(err, "signup")
		}
		formatSignedIn(cmd.OutOrStdout(), s)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the persisted session",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		env, err := initEnv(ctx, "cli")
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.Sessions.Logout(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the persisted session",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		env, err := initEnv(ctx, "cli")
		if err != nil {
			return err
		}
		defer env.Close()

		s, err := env.Sessions.Current(ctx)
		if errors.Is(err, session.ErrNoSession) {
			fmt.Fprintln(cmd.OutOrStdout(), "Not signed in.")
			return nil
		}
		if err != nil {
			return err
		}
		formatWhoami(cmd.OutOrStdout(), s, time.Now())
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{loginCmd, signupCmd} {
		c.Flags().StringVar(&authEmail, "email", "", "account email")
		c.Flags().StringVar(&authPassword, "password", "", "account password")
		c.Flags().StringVar(&authProfile, "profile", "", "profile (commande, stockage, transport, superviseur)")
	}
	signupCmd.Flags().StringVar(&authNom, "nom", "", "display name")

	rootCmd.AddCommand(loginCmd, signupCmd, logoutCmd, whoamiCmd)
}

func formatSignedIn(out io.Writer, s *session.Session) {
	fmt.Fprintf(out, "Signed in as %s (%s)\n", s.User.Email, s.User.TypeProfil.Label())
}

// formatWhoami prints the user and what the token claims about itself. The
// token is not verified.
func formatWhoami(out io.Writer, s *session.Session, now time.Time) {
	fmt.Fprintf(out, "Email:   %s\n", s.User.Email)
	if s.User.Nom != "" {
		fmt.Fprintf(out, "Nom:     %s\n", s.User.Nom)
	}
	if p := s.User.TypeProfil; p.Label() != "" {
		fmt.Fprintf(out, "Profile: %s (%s)\n", p, p.Label())
	}

	c, err := session.ParseClaims(s.Token)
	if err != nil {
		fmt.Fprintln(out, "Token:   opaque")
		return
	}
	exp, ok := c.Expiry()
	switch {
	case !ok:
		fmt.Fprintln(out, "Token:   no expiry")
	case exp.Before(now):
		fmt.Fprintf(out, "Token:   expired %s\n", exp.UTC().Format(time.RFC3339))
	default:
		fmt.Fprintf(out, "Token:   expires %s\n", exp.UTC().Format(time.RFC3339))
	}
}
