package cli

import (
	"github.com/caarlos0/tablewriter"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	invitationdomain "orgmembership/internal/invitation/domain"
)

func (c *cli) newInvitesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "invites",
		Aliases: []string{"invitations"},
		Short:   "List and answer invitations addressed to you",
	}

	listCmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List your pending invitations, oldest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			actor, err := c.actor(ctx)
			if err != nil {
				return err
			}
			invs, err := c.app.Services.Membership.PendingInvitations(ctx, actor.Email)
			if err != nil {
				return err
			}
			if len(invs) == 0 {
				cmd.Println("No pending invitations")
				return nil
			}
			return tablewriter.Render(
				cmd.OutOrStdout(),
				invs,
				[]string{"ID", "Organization", "Invited By", "Invited"},
				func(inv *invitationdomain.Invitation) ([]string, error) {
					return []string{inv.ID, inv.OrganizationName, inv.InvitedByEmail, humanize.Time(inv.CreatedAt)}, nil
				},
			)
		},
	}

	acceptCmd := &cobra.Command{
		Use:   "accept ID",
		Short: "Join the organization that invited you",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			actor, err := c.actor(ctx)
			if err != nil {
				return err
			}
			if err := c.app.Services.Membership.AcceptInvitation(ctx, args[0], actor); err != nil {
				return err
			}
			if org := c.app.Sessions.Organization(); org != nil {
				cmd.Printf("Joined %s\n", org.Name)
			} else {
				cmd.Println("Invitation accepted")
			}
			return nil
		},
	}

	declineCmd := &cobra.Command{
		Use:   "decline ID",
		Short: "Decline an invitation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			actor, err := c.actor(ctx)
			if err != nil {
				return err
			}
			if err := c.app.Services.Membership.DeclineInvitation(ctx, args[0], actor.Email); err != nil {
				return err
			}
			cmd.Println("Invitation declined")
			return nil
		},
	}

	cmd.AddCommand(listCmd, acceptCmd, declineCmd)
	return cmd
}
