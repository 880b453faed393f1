package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kintree/pkg/family"
)

// relateCommand groups the relationship subcommands.
func (c *CLI) relateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "relate",
		Short: "Manage relationships between members",
	}

	cmd.AddCommand(c.relateAddCommand())
	cmd.AddCommand(c.relateListCommand())
	cmd.AddCommand(c.relateRemoveCommand())

	return cmd
}

// relateAddCommand creates the "relate add" subcommand.
func (c *CLI) relateAddCommand() *cobra.Command {
	var r family.Relationship

	cmd := &cobra.Command{
		Use:   "add <from-id> <to-id>",
		Short: "Add a relationship between two members",
		Long: `Add a directed relationship between two members.

For the parental labels (parent, father, mother) the direction reads
"from is a parent of to" and drives generation assignment. Any other
label (spouse, sibling, godmother, ...) is stored but does not affect
the tree layout.`,
		Example: `  kintree relate add <ada-id> <byron-id> --type mother
  kintree relate add <ada-id> <william-id> --type spouse`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := c.newStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			from, err := st.GetMember(ctx, args[0])
			if err != nil {
				return err
			}
			to, err := st.GetMember(ctx, args[1])
			if err != nil {
				return err
			}

			r.From = from.ID
			r.To = to.ID
			stored, err := st.UpsertRelationship(ctx, r)
			if err != nil {
				return err
			}

			if stored.IsParental() {
				printSuccess("%s is now a %s of %s", from.DisplayName(), stored.Type, to.DisplayName())
			} else {
				printSuccess("Related %s %s %s (%s)", from.DisplayName(), iconArrow, to.DisplayName(), stored.Type)
			}
			printDetail("ID: %s", stored.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&r.ID, "id", "", "record ID (minted when empty)")
	cmd.Flags().StringVar(&r.Type, "type", "", "relationship label (parent, father, mother, spouse, ...)")
	_ = cmd.MarkFlagRequired("type")

	return cmd
}

// relateListCommand creates the "relate list" subcommand.
func (c *CLI) relateListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all relationships",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := c.newStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			rels, err := st.ListRelationships(ctx)
			if err != nil {
				return err
			}
			if len(rels) == 0 {
				printInfo("No relationships yet")
				printNextStep("Add one", "kintree relate add <from-id> <to-id> --type parent")
				return nil
			}

			members, err := st.ListMembers(ctx)
			if err != nil {
				return err
			}
			idx := memberIndex(members)

			rows := make([][]string, 0, len(rels))
			for _, r := range rels {
				rows = append(rows, []string{r.ID, memberLabel(idx, r.From), r.Type, memberLabel(idx, r.To)})
			}
			fmt.Println(recordTable([]string{"ID", "From", "Type", "To"}, rows))
			return nil
		},
	}
}

// relateRemoveCommand creates the "relate rm" subcommand.
func (c *CLI) relateRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Remove a relationship",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := c.newStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			r, err := st.GetRelationship(ctx, args[0])
			if err != nil {
				return err
			}
			if err := st.DeleteRelationship(ctx, r.ID); err != nil {
				return err
			}

			printSuccess("Removed relationship %s (%s)", r.ID, r.Type)
			return nil
		},
	}
}
