// Package cli implements orgctl, the command-line client for organization
// membership. Commands run the auth and membership services in-process
// against the configured store; the signed-in session token is kept in a
// file between invocations.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"orgmembership/internal/config"
	"orgmembership/internal/platform/logging"
)

// Opener builds the App commands run against.
type Opener func(ctx context.Context, cfg *config.Config, logger *log.Logger) (*App, error)

// Execute runs orgctl and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	c := newCLI(OpenApp)
	defer c.close()
	c.root.SetOut(os.Stdout)
	if err := c.root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// cli carries the state shared by every command of one invocation.
type cli struct {
	root *cobra.Command
	open Opener

	sessionPath string
	verbose     bool

	app *App
}

func newCLI(open Opener) *cli {
	c := &cli{open: open}
	c.root = c.newRootCmd()
	return c
}

func (c *cli) newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "orgctl",
		Short:         "Manage organizations, members and invitations",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if c.app == nil {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				level := cfg.LogLevel
				if c.verbose {
					level = "debug"
				}
				logger := logging.New(logging.Options{Level: level, Format: cfg.LogFormat, Output: cmd.ErrOrStderr()})
				if !cmd.Flags().Changed("session-file") && cfg.SessionFile != "" {
					c.sessionPath = cfg.SessionFile
				}
				if c.app, err = c.open(cmd.Context(), cfg, logger); err != nil {
					return err
				}
			}
			if c.sessionPath == "" {
				path, err := defaultSessionPath()
				if err != nil {
					return err
				}
				c.sessionPath = path
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&c.sessionPath, "session-file", "", "Where the signed-in session is kept (default ~/.orgctl/session.yaml)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Log at debug level")

	root.AddCommand(
		c.newSignUpCmd(),
		c.newLoginCmd(),
		c.newLogoutCmd(),
		c.newWhoAmICmd(),
		c.newOrgCmd(),
		c.newMemberCmd(),
		c.newInvitesCmd(),
	)
	return root
}

func (c *cli) close() {
	if c.app == nil {
		return
	}
	if err := c.app.Close(context.Background()); err != nil {
		c.app.Logger.Warn("close", "err", err)
	}
	c.app = nil
}

var (
	errNotSignedIn    = errors.New("not signed in; run orgctl login")
	errNoOrganization = errors.New("you do not belong to an organization; pass --org")
)
