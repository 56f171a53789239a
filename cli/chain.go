package cli

import (
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/phil-mansfield/ptcl"
	"github.com/phil-mansfield/ptcl/catalog"
	"github.com/phil-mansfield/ptcl/io"
)

func newChainCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "chain [flags] <snapshot> [id]...",
		Short: "Follow suppressed c.m. records to their live successors",
		Long: `Chain resolves each id to the first record along its chain of
suppressed centers of mass that is still live, printing one line per id:

    <id> <resolved id> <role> <steps>

With no ids every suppressed record in the snapshot is resolved, and the id
column holds its slot instead.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChain(cmd, format, args[0], args[1:])
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "ascii", "snapshot format")
	return cmd
}

func runChain(cmd *cobra.Command, format, path string, ids []string) error {
	f, err := io.ParseFormat(format)
	if err != nil {
		return err
	}
	_, ps, err := io.ReadSnapshot(path, f)
	if err != nil {
		return err
	}

	man := catalog.NewManager()
	man.Add(ps)
	w := cmd.OutOrStdout()

	if len(ids) == 0 {
		for slot := range ps {
			if ps[slot].Status != ptcl.StatusSuppressed {
				continue
			}
			p, steps, err := man.ResolveAt(slot)
			if err != nil {
				return errors.Wrapf(err, "slot %d", slot)
			}
			fmt.Fprintf(w, "%d %d %s %d\n", slot, p.ID, p.GuessRole(), steps)
		}
		return nil
	}

	for _, s := range ids {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return errors.Errorf("'%s' is not an id", s)
		}
		p, steps, err := man.Resolve(id)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%d %d %s %d\n", id, p.ID, p.GuessRole(), steps)
	}
	return nil
}
