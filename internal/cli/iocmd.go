package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kintree/pkg/family"
	pkgio "github.com/matzehuels/kintree/pkg/io"
)

// importCommand creates the import command.
func (c *CLI) importCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.json>",
		Short: "Replace all records with a JSON snapshot",
		Long: `Import a JSON snapshot, replacing every stored member and relationship.

Pass "-" to read the snapshot from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var (
				snap family.Snapshot
				err  error
			)
			if args[0] == "-" {
				snap, err = pkgio.ReadJSON(os.Stdin)
			} else {
				snap, err = pkgio.ImportJSON(args[0])
			}
			if err != nil {
				return err
			}

			st, err := c.newStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.Import(ctx, snap); err != nil {
				return err
			}

			printSuccess("Imported %d members, %d relationships", len(snap.Members), len(snap.Relationships))
			if n := danglingEndpoints(snap); n > 0 {
				printWarning("%d relationships reference members that do not exist; they are kept but not drawn", n)
			}
			printNextStep("Render the tree", "kintree render -o tree.svg")
			return nil
		},
	}
}

// exportCommand creates the export command.
func (c *CLI) exportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export <file.json>",
		Short: "Write all records as a JSON snapshot",
		Long: `Export every stored member and relationship as a JSON snapshot,
sorted by ID so repeated exports of the same records are byte-identical.

Pass "-" to write the snapshot to stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := c.newStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			snap, err := st.Snapshot(ctx)
			if err != nil {
				return err
			}

			path := args[0]
			if path == "-" {
				path = ""
			}
			out, err := openOutput(path)
			if err != nil {
				return err
			}
			if err := pkgio.WriteJSON(snap, out); err != nil {
				out.Close()
				return err
			}
			if err := out.Close(); err != nil {
				return err
			}

			if path != "" {
				printSuccess("Exported %d members, %d relationships", len(snap.Members), len(snap.Relationships))
				printFile(path)
			}
			return nil
		},
	}
}

// danglingEndpoints counts relationships whose endpoints are not in the
// snapshot's member set. Such records are valid but skipped by the layout.
func danglingEndpoints(snap family.Snapshot) int {
	idx := snap.MemberIndex()
	n := 0
	for _, r := range snap.Relationships {
		if _, ok := idx[r.From]; !ok {
			n++
			continue
		}
		if _, ok := idx[r.To]; !ok {
			n++
		}
	}
	return n
}

// nopCloser wraps an io.Writer with a no-op Close method.
// It is used to make os.Stdout compatible with io.WriteCloser.
type nopCloser struct{ io.Writer }

// Close implements io.Closer with a no-op.
func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path.
// If path is empty, it returns os.Stdout wrapped in nopCloser.
// Otherwise, it creates the file at path, overwriting if it exists.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}
