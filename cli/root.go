/*Package cli implements the ptcl command line tool, which converts, inspects
and checkpoints particle snapshots.

Every command returns its errors instead of exiting, so truncated records and
corrupt files surface as a non-zero exit status from main. --verbose enables
debug logging on stderr.
*/
package cli

import (
	"context"
	"fmt"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/phil-mansfield/ptcl/io"
)

var version = "dev"

// Execute runs the ptcl command line tool.
func Execute() error {
	return newRootCmd().ExecuteContext(context.Background())
}

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:          "ptcl",
		Short:        "ptcl converts and inspects hierarchical particle snapshots",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(cmd.ErrOrStderr(), level))
			cmd.SetContext(ctx)
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newConvertCmd())
	root.AddCommand(newRSearchCmd())
	root.AddCommand(newChainCmd())
	root.AddCommand(newCensusCmd())
	root.AddCommand(newCheckpointCmd())
	root.AddCommand(newExampleConfigCmd())

	return root
}

func newExampleConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "example-config",
		Short: "Print an example run configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), io.ExampleConfigFile)
			return err
		},
	}
}
