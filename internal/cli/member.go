package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/kintree/pkg/family"
)

// memberCommand groups the member record subcommands.
func (c *CLI) memberCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "member",
		Short: "Manage family members",
	}

	cmd.AddCommand(c.memberAddCommand())
	cmd.AddCommand(c.memberShowCommand())
	cmd.AddCommand(c.memberListCommand())
	cmd.AddCommand(c.memberRemoveCommand())

	return cmd
}

// memberAddCommand creates the "member add" subcommand.
func (c *CLI) memberAddCommand() *cobra.Command {
	var m family.Member

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a family member",
		Example: `  kintree member add --first Ada --last Lovelace --birth 1815
  kintree member add --first George --last Byron --notes "the poet"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.newStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			stored, err := st.UpsertMember(cmd.Context(), m)
			if err != nil {
				return err
			}

			printSuccess("Added %s", stored.DisplayName())
			printDetail("ID: %s", stored.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&m.ID, "id", "", "record ID (minted when empty)")
	cmd.Flags().StringVar(&m.FirstName, "first", "", "first name")
	cmd.Flags().StringVar(&m.MiddleName, "middle", "", "middle name")
	cmd.Flags().StringVar(&m.LastName, "last", "", "last name")
	cmd.Flags().StringVar(&m.MaidenName, "maiden", "", "maiden name")
	cmd.Flags().StringVar(&m.BirthDate, "birth", "", "birth date (free-form text)")
	cmd.Flags().StringVar(&m.DeathDate, "death", "", "death date (free-form text)")
	cmd.Flags().StringVar(&m.BurialPlace, "burial", "", "burial place")
	cmd.Flags().StringVar(&m.Links, "links", "", "reference links")
	cmd.Flags().StringVar(&m.Notes, "notes", "", "free-form notes")
	_ = cmd.MarkFlagRequired("first")
	_ = cmd.MarkFlagRequired("last")

	return cmd
}

// memberShowCommand creates the "member show" subcommand.
func (c *CLI) memberShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a member and their relationships",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := c.newStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			m, err := st.GetMember(ctx, args[0])
			if err != nil {
				return err
			}

			fmt.Println(StyleTitle.Render(m.FullName()))
			if m.MaidenName != "" {
				printKeyValue("Maiden", m.MaidenName)
			}
			if m.BirthDate != "" {
				printKeyValue("Born", m.BirthDate)
			}
			if m.DeathDate != "" {
				printKeyValue("Died", m.DeathDate)
			}
			if m.BurialPlace != "" {
				printKeyValue("Buried", m.BurialPlace)
			}
			if m.Links != "" {
				printKeyValue("Links", m.Links)
			}
			if m.Notes != "" {
				printKeyValue("Notes", m.Notes)
			}
			printKeyValue("ID", m.ID)

			rels, err := st.ListRelationships(ctx)
			if err != nil {
				return err
			}
			members, err := st.ListMembers(ctx)
			if err != nil {
				return err
			}
			idx := memberIndex(members)

			printed := false
			for _, r := range rels {
				if r.From != m.ID && r.To != m.ID {
					continue
				}
				if !printed {
					printNewline()
					printed = true
				}
				printDetail("%s %s %s (%s)", memberLabel(idx, r.From), iconArrow, memberLabel(idx, r.To), r.Type)
			}
			return nil
		},
	}
}

// memberListCommand creates the "member list" subcommand.
func (c *CLI) memberListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all members",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.newStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			members, err := st.ListMembers(cmd.Context())
			if err != nil {
				return err
			}
			if len(members) == 0 {
				printInfo("No members yet")
				printNextStep("Add one", "kintree member add --first <name> --last <name>")
				return nil
			}

			rows := make([][]string, 0, len(members))
			for _, m := range members {
				rows = append(rows, []string{m.ID, m.FullName(), m.BirthDate, m.DeathDate})
			}
			fmt.Println(recordTable([]string{"ID", "Name", "Born", "Died"}, rows))
			return nil
		},
	}
}

// memberRemoveCommand creates the "member rm" subcommand.
func (c *CLI) memberRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Remove a member and their relationships",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := c.newStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			m, err := st.GetMember(ctx, args[0])
			if err != nil {
				return err
			}

			rels, err := st.ListRelationships(ctx)
			if err != nil {
				return err
			}
			cascaded := 0
			for _, r := range rels {
				if r.From == m.ID || r.To == m.ID {
					cascaded++
				}
			}

			if err := st.DeleteMember(ctx, m.ID); err != nil {
				return err
			}

			printSuccess("Removed %s", m.DisplayName())
			if cascaded > 0 {
				printDetail("Removed %d relationships", cascaded)
			}
			return nil
		},
	}
}

// =============================================================================
// Helpers
// =============================================================================

// memberIndex builds an ID lookup for label resolution.
func memberIndex(members []family.Member) map[string]family.Member {
	idx := make(map[string]family.Member, len(members))
	for _, m := range members {
		idx[m.ID] = m
	}
	return idx
}

// memberLabel returns the display name for id, or the raw ID when the
// member is not in the index (dangling relationship endpoints).
func memberLabel(idx map[string]family.Member, id string) string {
	if m, ok := idx[id]; ok {
		return m.DisplayName()
	}
	return id
}

// recordTable renders rows as a bordered table for list output.
func recordTable(headers []string, rows [][]string) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 0 {
				return StyleDim
			}
			return StyleValue
		}).
		Render()
}
