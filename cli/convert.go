package cli

import (
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/phil-mansfield/ptcl/io"
)

type convertOpts struct {
	from, to, endian, outDir string
	workers                  int
}

func newConvertCmd() *cobra.Command {
	opts := convertOpts{}

	cmd := &cobra.Command{
		Use:   "convert [flags] <snapshot>...",
		Short: "Convert snapshots between formats",
		Long: `Convert reads each snapshot in the --from format and writes it to --out
with the --to format's name as its extension. Files are converted
concurrently; the first failure stops the remaining conversions.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.from, "from", "ascii", "input format (ascii, binary, dump or table)")
	cmd.Flags().StringVar(&opts.to, "to", "binary", "output format")
	cmd.Flags().StringVar(&opts.endian, "endian", "little", "byte order of binary output (little, big or native)")
	cmd.Flags().StringVarP(&opts.outDir, "out", "o", ".", "output directory")
	cmd.Flags().IntVarP(&opts.workers, "workers", "j", runtime.NumCPU(), "number of files converted at once")

	return cmd
}

// convertedName returns the output path for the snapshot at path.
func convertedName(outDir, path string, to io.Format) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(outDir, base+"."+to.String())
}

// convertedNames returns the output path of every input, failing if two
// inputs would be written to the same file.
func convertedNames(outDir string, paths []string, to io.Format) ([]string, error) {
	outs := make([]string, len(paths))
	seen := make(map[string]string, len(paths))
	for i, path := range paths {
		outs[i] = convertedName(outDir, path, to)
		if prev, ok := seen[outs[i]]; ok {
			return nil, errors.Errorf(
				"%s and %s would both be converted to %s", prev, path, outs[i])
		}
		seen[outs[i]] = path
	}
	return outs, nil
}

func runConvert(cmd *cobra.Command, opts convertOpts, paths []string) error {
	logger := loggerFromContext(cmd.Context())

	from, err := io.ParseFormat(opts.from)
	if err != nil {
		return err
	}
	to, err := io.ParseFormat(opts.to)
	if err != nil {
		return err
	}
	order, err := io.ParseEndianness(opts.endian)
	if err != nil {
		return err
	}

	outs, err := convertedNames(opts.outDir, paths, to)
	if err != nil {
		return err
	}

	prog := newProgress(logger)
	g, ctx := errgroup.WithContext(cmd.Context())
	if opts.workers > 0 {
		g.SetLimit(opts.workers)
	}

	for i, path := range paths {
		out := outs[i]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			hd, ps, err := io.ReadSnapshot(path, from)
			if err != nil {
				return err
			}

			if err := io.WriteSnapshot(out, hd, ps, to, order); err != nil {
				return err
			}
			logger.Debug("converted", "in", path, "out", out, "records", len(ps))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	prog.done("conversion finished", "files", len(paths), "format", to)
	return nil
}
