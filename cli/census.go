package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/phil-mansfield/ptcl"
	"github.com/phil-mansfield/ptcl/analyze"
	"github.com/phil-mansfield/ptcl/io"
)

type censusOpts struct {
	format string
	hist   analyze.HistInfo
}

func newCensusCmd() *cobra.Command {
	opts := censusOpts{}

	cmd := &cobra.Command{
		Use:   "census [flags] <snapshot>",
		Short: "Count records by role and summarize search radii",
		Long: `Census guesses the role of every record from its status, prints the
count of each role and summary statistics of the search radii. With
--bins a histogram of search radii is printed as "<center> <count>" lines.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCensus(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "table", "snapshot format")
	cmd.Flags().IntVar(&opts.hist.Bins, "bins", 0, "number of search radius histogram bins")
	cmd.Flags().Float64Var(&opts.hist.Min, "min", 1e-4, "smallest histogram edge")
	cmd.Flags().Float64Var(&opts.hist.Max, "max", 1, "largest histogram edge")
	cmd.Flags().StringVar(&opts.hist.Scale, "scale", "log", "histogram scale (log or linear)")

	return cmd
}

func readColumns(path string, f io.Format) (*analyze.Columns, error) {
	if f == io.Table {
		return analyze.ReadColumns(path)
	}
	_, ps, err := io.ReadSnapshot(path, f)
	if err != nil {
		return nil, err
	}
	return analyze.FromRecords(ps), nil
}

func runCensus(cmd *cobra.Command, opts censusOpts, path string) error {
	logger := loggerFromContext(cmd.Context())

	f, err := io.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	c, err := readColumns(path, f)
	if err != nil {
		return err
	}
	logger.Debug("read columns", "file", path, "records", c.Len())

	w := cmd.OutOrStdout()
	census := c.Census()
	if err := census.Print(w); err != nil {
		return err
	}
	fmt.Fprintf(w, "%-14s %d\n", "Total", census.Total())
	fmt.Fprintf(w, "r_search       %s\n", c.RSearchStats(ptcl.RoleInvalid))

	if opts.hist.Bins == 0 {
		return nil
	}
	counts, err := analyze.Histogram(c.RSearch, &opts.hist)
	if err != nil {
		return err
	}
	centers := opts.hist.Centers()
	for i := range counts {
		fmt.Fprintf(w, "%.6g %d\n", centers[i], counts[i])
	}
	return nil
}
