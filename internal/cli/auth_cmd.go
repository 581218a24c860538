package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	identityservice "orgmembership/internal/identity/service"
	membershipservice "orgmembership/internal/membership/service"
	"orgmembership/internal/notification"
)

func (c *cli) newSignUpCmd() *cobra.Command {
	var (
		email    string
		password string
		name     string
		noPrompt bool
	)
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			prompter := newLinePrompter(cmd.InOrStdin(), cmd.OutOrStdout())
			if password == "" {
				var err error
				if password, err = prompter.AskSecret("Password: "); err != nil {
					return err
				}
			}
			res, err := c.app.Services.Auth.SignUp(cmd.Context(), email, password, name)
			if err != nil {
				return err
			}
			cmd.Printf("Signed up as %s (%s)\n", res.Email, res.UserID)
			return c.signedIn(cmd, res, prompter, noPrompt)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password (asked for when omitted)")
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().BoolVar(&noPrompt, "no-prompt", false, "Do not offer pending invitations")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func (c *cli) newLoginCmd() *cobra.Command {
	var (
		email    string
		password string
		noPrompt bool
	)
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			prompter := newLinePrompter(cmd.InOrStdin(), cmd.OutOrStdout())
			if password == "" {
				var err error
				if password, err = prompter.AskSecret("Password: "); err != nil {
					return err
				}
			}
			if previous, err := loadSession(c.sessionPath); err == nil && previous != nil {
				if err := c.app.Services.Auth.SignOut(cmd.Context(), previous.SessionID); err != nil {
					c.app.Logger.Warn("sign out previous session", "err", err)
				}
			}
			res, err := c.app.Services.Auth.SignIn(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			cmd.Printf("Signed in as %s\n", res.Email)
			return c.signedIn(cmd, res, prompter, noPrompt)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password (asked for when omitted)")
	cmd.Flags().BoolVar(&noPrompt, "no-prompt", false, "Do not offer pending invitations")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

// signedIn saves the new session and offers the oldest pending invitation.
func (c *cli) signedIn(cmd *cobra.Command, res *identityservice.AuthResult, prompter *linePrompter, noPrompt bool) error {
	err := saveSession(c.sessionPath, &savedSession{
		AccessToken: res.AccessToken,
		SessionID:   res.SessionID,
		UserID:      res.UserID,
		Email:       res.Email,
		ExpiresAt:   res.ExpiresAt,
	})
	if err != nil {
		return err
	}
	if noPrompt {
		return nil
	}
	actor := membershipservice.Actor{ID: res.UserID, Email: res.Email}
	relay := notification.NewRelay(c.app.Services.Membership, prompter, c.app.Logger)
	out, err := relay.OnSignedIn(cmd.Context(), actor)
	if err != nil {
		// The sign-in itself succeeded; the invitation stays pending.
		c.app.Logger.Warn("invitation not resolved", "err", err)
		return nil
	}
	if out.Invitation != nil {
		switch out.Choice {
		case notification.Accept:
			cmd.Printf("Joined %s\n", out.Invitation.OrganizationName)
		case notification.Decline:
			cmd.Printf("Declined the invitation to %s\n", out.Invitation.OrganizationName)
		}
	}
	if out.Remaining > 0 {
		cmd.Printf("%d more pending %s; run orgctl invites list\n", out.Remaining, plural(out.Remaining, "invitation", "invitations"))
	}
	return nil
}

func (c *cli) newLogoutCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			saved, err := loadSession(c.sessionPath)
			if err != nil {
				return err
			}
			if saved == nil {
				cmd.Println("Not signed in")
				return nil
			}
			if all {
				if _, err := c.actor(cmd.Context()); err != nil {
					return err
				}
				err = c.app.Services.Auth.SignOutAll(cmd.Context(), saved.UserID)
			} else {
				err = c.app.Services.Auth.SignOut(cmd.Context(), saved.SessionID)
			}
			if err != nil {
				return err
			}
			if err := removeSession(c.sessionPath); err != nil {
				return err
			}
			cmd.Printf("Signed out %s\n", saved.Email)
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "End every session of this account, on all devices")
	return cmd
}

func (c *cli) newWhoAmICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in principal and its organization",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := c.actor(cmd.Context()); err != nil {
				return err
			}
			p := c.app.Sessions.Principal()
			cmd.Printf("Email:        %s\n", p.Email)
			cmd.Printf("User ID:      %s\n", p.ID)
			if p.DisplayName != "" {
				cmd.Printf("Name:         %s\n", p.DisplayName)
			}
			if org := c.app.Sessions.Organization(); org != nil {
				cmd.Printf("Organization: %s (%s)\n", org.Name, org.ID)
				cmd.Printf("Role:         %s\n", p.Role)
			} else {
				cmd.Println("Organization: none")
			}
			if saved, err := loadSession(c.sessionPath); err == nil && saved != nil {
				cmd.Printf("Session ends: %s\n", humanize.Time(saved.ExpiresAt))
			}
			return nil
		},
	}
}

// actor resumes the saved session. An expired or revoked session is
// forgotten so the next command asks for a login.
func (c *cli) actor(ctx context.Context) (membershipservice.Actor, error) {
	saved, err := loadSession(c.sessionPath)
	if err != nil {
		return membershipservice.Actor{}, err
	}
	if saved == nil {
		return membershipservice.Actor{}, errNotSignedIn
	}
	actor, err := c.app.Resume(ctx, saved.AccessToken)
	var authErr *identityservice.AuthError
	if errors.As(err, &authErr) {
		if rmErr := removeSession(c.sessionPath); rmErr != nil {
			c.app.Logger.Warn("forget session", "err", rmErr)
		}
		return membershipservice.Actor{}, fmt.Errorf("session ended (%s); run orgctl login", authErr.Code)
	}
	return actor, err
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
