package cli

import (
	"sort"
	"strings"

	"github.com/caarlos0/tablewriter"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	auditdomain "orgmembership/internal/audit/domain"
	invitationdomain "orgmembership/internal/invitation/domain"
	orgdomain "orgmembership/internal/organization/domain"
)

func (c *cli) newOrgCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "org",
		Aliases: []string{"organization"},
		Short:   "Create and inspect organizations",
	}
	cmd.AddCommand(
		c.newOrgCreateCmd(),
		c.newOrgShowCmd(),
		c.newOrgHistoryCmd(),
		c.newOrgInvitesCmd(),
	)
	return cmd
}

func (c *cli) newOrgCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create NAME",
		Short: "Create an organization with yourself as its admin",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			actor, err := c.actor(ctx)
			if err != nil {
				return err
			}
			orgID, err := c.app.Services.Membership.CreateOrganization(ctx, strings.Join(args, " "), actor)
			if err != nil {
				return err
			}
			cmd.PrintErrln("Organization created")
			cmd.Println(orgID)
			return nil
		},
	}
}

func (c *cli) newOrgShowCmd() *cobra.Command {
	var orgID string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show an organization and its members",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			actor, err := c.actor(ctx)
			if err != nil {
				return err
			}
			id, err := c.orgID(orgID)
			if err != nil {
				return err
			}
			org, err := c.app.Services.Membership.GetOrganization(ctx, id, actor)
			if err != nil {
				return err
			}
			cmd.Printf("%s (%s), created %s\n\n", org.Name, org.ID, humanize.Time(org.CreatedAt))
			if err := tablewriter.Render(
				cmd.OutOrStdout(),
				org.Members,
				[]string{"User ID", "Email", "Role", "Joined"},
				func(m orgdomain.Member) ([]string, error) {
					return []string{m.UID, m.Email, string(m.Role), humanize.Time(m.JoinedAt)}, nil
				},
			); err != nil {
				return err
			}
			if len(org.PendingInvites) > 0 {
				invites := append([]string(nil), org.PendingInvites...)
				sort.Strings(invites)
				cmd.Printf("\nPending: %s\n", strings.Join(invites, ", "))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&orgID, "org", "", "Organization ID (default: your organization)")
	return cmd
}

func (c *cli) newOrgHistoryCmd() *cobra.Command {
	var (
		orgID string
		limit int
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent membership events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			actor, err := c.actor(ctx)
			if err != nil {
				return err
			}
			id, err := c.orgID(orgID)
			if err != nil {
				return err
			}
			entries, err := c.app.Services.Membership.History(ctx, id, actor, limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				cmd.Println("No events found")
				return nil
			}
			return tablewriter.Render(
				cmd.OutOrStdout(),
				entries,
				[]string{"When", "Action", "By", "Details"},
				func(e *auditdomain.AuditLog) ([]string, error) {
					return []string{humanize.Time(e.CreatedAt), e.Action, e.UserID, formatMetadata(e.Metadata)}, nil
				},
			)
		},
	}
	cmd.Flags().StringVar(&orgID, "org", "", "Organization ID (default: your organization)")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of events")
	return cmd
}

func (c *cli) newOrgInvitesCmd() *cobra.Command {
	var orgID string
	cmd := &cobra.Command{
		Use:   "invites",
		Short: "List the organization's invitations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			actor, err := c.actor(ctx)
			if err != nil {
				return err
			}
			id, err := c.orgID(orgID)
			if err != nil {
				return err
			}
			invs, err := c.app.Services.Membership.OrganizationInvitations(ctx, id, actor)
			if err != nil {
				return err
			}
			if len(invs) == 0 {
				cmd.Println("No invitations found")
				return nil
			}
			return tablewriter.Render(
				cmd.OutOrStdout(),
				invs,
				[]string{"ID", "Email", "Status", "Invited"},
				func(inv *invitationdomain.Invitation) ([]string, error) {
					return []string{inv.ID, inv.Email, string(inv.Status), humanize.Time(inv.CreatedAt)}, nil
				},
			)
		},
	}
	cmd.Flags().StringVar(&orgID, "org", "", "Organization ID (default: your organization)")
	return cmd
}

// orgID returns flag, or the signed-in principal's organization when flag is empty.
func (c *cli) orgID(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if org := c.app.Sessions.Organization(); org != nil {
		return org.ID, nil
	}
	return "", errNoOrganization
}

func formatMetadata(md map[string]string) string {
	keys := make([]string, 0, len(md))
	for k := range md {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+md[k])
	}
	return strings.Join(parts, " ")
}
