package cli

import (
	"fmt"
	"time"

	"github.com/segmentio/ksuid"
	"github.com/spf13/cobra"

	"github.com/phil-mansfield/ptcl/checkpoint"
	"github.com/phil-mansfield/ptcl/io"
)

func newCheckpointCmd() *cobra.Command {
	var store string

	cmd := &cobra.Command{
		Use:   "checkpoint",
		Short: "Save, restore and list snapshots in a checkpoint store",
	}
	cmd.PersistentFlags().StringVarP(&store, "store", "s", "checkpoints", "checkpoint store directory")

	cmd.AddCommand(newCheckpointSaveCmd(&store))
	cmd.AddCommand(newCheckpointLoadCmd(&store))
	cmd.AddCommand(newCheckpointListCmd(&store))
	cmd.AddCommand(newCheckpointDeleteCmd(&store))
	return cmd
}

func withStore(dir *string, fn func(s *checkpoint.Store) error) error {
	s, err := checkpoint.Open(*dir, nil)
	if err != nil {
		return err
	}
	if err := fn(s); err != nil {
		s.Close()
		return err
	}
	return s.Close()
}

func newCheckpointSaveCmd(store *string) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "save [flags] <snapshot>",
		Short: "Save a snapshot and print its id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := io.ParseFormat(format)
			if err != nil {
				return err
			}
			hd, ps, err := io.ReadSnapshot(args[0], f)
			if err != nil {
				return err
			}

			return withStore(store, func(s *checkpoint.Store) error {
				id, err := s.Save(hd, ps)
				if err != nil {
					return err
				}
				loggerFromContext(cmd.Context()).Debug("saved checkpoint",
					"id", id, "records", len(ps))
				_, err = fmt.Fprintln(cmd.OutOrStdout(), id)
				return err
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "ascii", "snapshot format")
	return cmd
}

func newCheckpointLoadCmd(store *string) *cobra.Command {
	var format, endian string

	cmd := &cobra.Command{
		Use:   "load [flags] <id|latest> <out>",
		Short: "Write a saved snapshot to a file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := io.ParseFormat(format)
			if err != nil {
				return err
			}
			order, err := io.ParseEndianness(endian)
			if err != nil {
				return err
			}

			return withStore(store, func(s *checkpoint.Store) error {
				id, err := resolveCheckpoint(s, args[0])
				if err != nil {
					return err
				}
				hd, ps, err := s.Load(id)
				if err != nil {
					return err
				}
				return io.WriteSnapshot(args[1], hd, ps, f, order)
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "ascii", "output format")
	cmd.Flags().StringVar(&endian, "endian", "little", "byte order of binary output")
	return cmd
}

func resolveCheckpoint(s *checkpoint.Store, arg string) (ksuid.KSUID, error) {
	if arg != "latest" {
		return ksuid.Parse(arg)
	}
	e, err := s.Latest()
	if err != nil {
		return ksuid.Nil, err
	}
	return e.ID, nil
}

func newCheckpointListCmd(store *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved snapshots, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(store, func(s *checkpoint.Store) error {
				entries, err := s.List()
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				for _, e := range entries {
					fmt.Fprintf(w, "%s %s file=%d time=%g records=%d\n",
						e.ID, e.Saved().Format(time.RFC3339),
						e.Header.FileID, e.Header.Time, e.Count)
				}
				return nil
			})
		},
	}
}

func newCheckpointDeleteCmd(store *string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete saved snapshots",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(store, func(s *checkpoint.Store) error {
				for _, arg := range args {
					id, err := ksuid.Parse(arg)
					if err != nil {
						return err
					}
					if err := s.Delete(id); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}
