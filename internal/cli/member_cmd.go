package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	membershipdomain "orgmembership/internal/membership/domain"
	membershipservice "orgmembership/internal/membership/service"
)

func (c *cli) newMemberCmd() *cobra.Command {
	var orgID string
	cmd := &cobra.Command{
		Use:   "member",
		Short: "Invite, promote and remove members",
	}
	cmd.PersistentFlags().StringVar(&orgID, "org", "", "Organization ID (default: your organization)")

	inviteCmd := &cobra.Command{
		Use:   "invite EMAIL",
		Short: "Invite someone to the organization",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			actor, err := c.actor(ctx)
			if err != nil {
				return err
			}
			id, err := c.orgID(orgID)
			if err != nil {
				return err
			}
			inv, err := c.app.Services.Membership.InviteMember(ctx, args[0], id, actor)
			if err != nil {
				return err
			}
			cmd.PrintErrf("Invited %s\n", inv.Email)
			cmd.Println(inv.ID)
			return nil
		},
	}

	roleCmd := &cobra.Command{
		Use:   "role MEMBER ROLE",
		Short: "Change a member's role (admin or member)",
		Long:  "Change a member's role. MEMBER is a user ID or the member's email.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			actor, err := c.actor(ctx)
			if err != nil {
				return err
			}
			id, err := c.orgID(orgID)
			if err != nil {
				return err
			}
			uid, err := c.memberID(ctx, id, args[0], actor)
			if err != nil {
				return err
			}
			role := membershipdomain.Role(strings.ToLower(args[1]))
			if err := c.app.Services.Membership.ChangeRole(ctx, uid, role, id, actor); err != nil {
				return err
			}
			cmd.Printf("%s is now %s\n", args[0], role)
			return nil
		},
	}

	removeCmd := &cobra.Command{
		Use:     "remove MEMBER",
		Aliases: []string{"rm"},
		Short:   "Remove a member from the organization",
		Long:    "Remove a member. Only admins may remove members. MEMBER is a user ID or the member's email.",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			actor, err := c.actor(ctx)
			if err != nil {
				return err
			}
			id, err := c.orgID(orgID)
			if err != nil {
				return err
			}
			uid, err := c.memberID(ctx, id, args[0], actor)
			if err != nil {
				return err
			}
			if err := c.app.Services.Membership.RemoveMember(ctx, uid, id, actor); err != nil {
				return err
			}
			cmd.Printf("Removed %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(inviteCmd, roleCmd, removeCmd)
	return cmd
}

// memberID resolves ref to a user ID. Refs containing @ are looked up by
// email among the organization's members.
func (c *cli) memberID(ctx context.Context, orgID, ref string, actor membershipservice.Actor) (string, error) {
	if !strings.Contains(ref, "@") {
		return ref, nil
	}
	org, err := c.app.Services.Membership.GetOrganization(ctx, orgID, actor)
	if err != nil {
		return "", err
	}
	m := org.MemberByEmail(ref)
	if m == nil {
		return "", fmt.Errorf("%s is not a member of %s: %w", ref, org.Name, membershipservice.ErrNotFound)
	}
	return m.UID, nil
}
