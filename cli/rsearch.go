package cli

import (
	"github.com/spf13/cobra"

	"github.com/phil-mansfield/ptcl"
	"github.com/phil-mansfield/ptcl/analyze"
	"github.com/phil-mansfield/ptcl/io"
)

func newRSearchCmd() *cobra.Command {
	var config string

	cmd := &cobra.Command{
		Use:   "rsearch --config <file> <in> <out>",
		Short: "Recompute search radii for a snapshot",
		Long: `Rsearch sets the search radius of every live record in <in> from its
velocity, using the [Search] section of the run configuration, and writes the
result to <out>. Unused, suppressed and uninitialized records are copied
unchanged. Run "ptcl example-config" for a documented configuration file.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRSearch(cmd, config, args[0], args[1])
		},
	}

	cmd.Flags().StringVarP(&config, "config", "c", "", "run configuration file")
	if err := cmd.MarkFlagRequired("config"); err != nil {
		panic(err)
	}

	return cmd
}

func runRSearch(cmd *cobra.Command, config, in, out string) error {
	logger := loggerFromContext(cmd.Context())

	wrap, warns, err := io.ReadRunConfig(config)
	for _, w := range warns {
		logger.Warn("config", "file", config, "warning", w)
	}
	if err != nil {
		return err
	}

	search, err := wrap.SearchConfig()
	if err != nil {
		return err
	}
	inFormat, outFormat, order := wrap.Formats()

	hd, ps, err := io.ReadSnapshot(in, inFormat)
	if err != nil {
		return err
	}

	n := updateRSearch(search, ps, wrap.Search.DtTree, wrap.Search.MassScaled)
	logger.Debug("updated search radii", "records", n, "of", len(ps))

	if err := io.WriteSnapshot(out, hd, ps, outFormat, order); err != nil {
		return err
	}

	stats := analyze.FromRecords(ps).RSearchStats(ptcl.RoleInvalid)
	logger.Info("search radii", "stats", stats)
	return nil
}

// updateRSearch recomputes the search radius of every live record and
// returns how many were updated.
func updateRSearch(c ptcl.SearchConfig, ps []ptcl.Ptcl, dt float64, massScaled bool) int {
	n := 0
	for i := range ps {
		switch ps[i].GuessRole() {
		case ptcl.RoleInvalid, ptcl.RoleUnused, ptcl.RoleSuppressed:
			continue
		}

		if massScaled {
			c.CalcRSearchMassScaled(&ps[i], dt)
		} else {
			c.CalcRSearch(&ps[i], dt)
		}
		n++
	}
	return n
}
