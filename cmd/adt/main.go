// adt - runtime ADT declarations CLI
//
// Usage:
//
//	adt show   --decl FILE                      Print declared types and unions
//	adt check  --decl FILE [--jobs N] DOC...    Decode and validate JSON documents
//	adt cover  --decl FILE --union NAME TAG...  Check that TAGs exhaust a union
//	adt pack   --decl FILE --out SNAP DOC...    Write validated documents to a snapshot
//	adt unpack --decl FILE SNAP                 Print the values in a snapshot
//
// A DOC of "-" reads one document from stdin.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Neumenon/adt/decl"
)

// cli holds global flags and the logger shared by subcommands.
type cli struct {
	verbose  bool
	declPath string
	timeout  time.Duration

	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "adt",
		Short: "Declare, validate and persist runtime algebraic data types",
		Long: `adt loads YAML type declarations and works with values of those types.

Values are JSON documents naming their constructor, e.g.
  {"Circle": [5, {"Point": {"x": 0, "y": 0}}]}`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config := zap.NewProductionConfig()
			if c.verbose {
				config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			logger, err := config.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			c.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = c.logger.Sync()
		},
	}

	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Enable verbose logging")
	root.PersistentFlags().StringVarP(&c.declPath, "decl", "d", "", "Declaration file (YAML)")
	root.PersistentFlags().DurationVar(&c.timeout, "timeout", time.Minute, "Operation timeout")

	root.AddCommand(c.showCmd())
	root.AddCommand(c.checkCmd())
	root.AddCommand(c.coverCmd())
	root.AddCommand(c.packCmd())
	root.AddCommand(c.unpackCmd())
	return root
}

// loadDecl loads the --decl file.
func (c *cli) loadDecl() (*decl.Set, error) {
	if c.declPath == "" {
		return nil, fmt.Errorf("--decl is required")
	}
	return decl.LoadFile(c.declPath, decl.WithLogger(c.logger))
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
