// Command relcore is a thin REPL front end over pkg/engine. The SQL
// lexer/parser is an external collaborator (spec §1) — this binary only
// wires stdin lines through an injected ast.Parser and prints whatever
// pkg/engine.Result comes back. Without a parser configured, `run`
// still starts and reports a clear error per line rather than silently
// doing nothing.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/relcore/relcore/pkg/ast"
	"github.com/relcore/relcore/pkg/engine"
)

// noParser is the default ast.Parser: it always fails, since no
// grammar implementation ships with this core (spec §1).
type noParser struct{}

func (noParser) Parse(string) (ast.Statement, error) {
	return nil, fmt.Errorf("no SQL parser configured — relcore only executes pre-parsed ast.Statement values")
}

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var dataDir string
	var enableNestLoop, enableSortMerge, dev bool

	cmd := &cobra.Command{
		Use:   "relcore",
		Short: "relcore is a disk-backed relational engine core (analyzer, planner, portal, executors)",
	}
	cmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "on-disk data directory (accepted for interface parity; the reference engine keeps everything in memory)")
	cmd.PersistentFlags().BoolVar(&enableNestLoop, "enable-nestloop", true, "enable the nested-loop join algorithm")
	cmd.PersistentFlags().BoolVar(&enableSortMerge, "enable-sortmerge", false, "enable the sort-merge join algorithm")
	cmd.PersistentFlags().BoolVar(&dev, "dev", false, "use the human-readable development log encoder instead of production JSON")

	cmd.AddCommand(newRunCmd(&dataDir, &enableNestLoop, &enableSortMerge, &dev))
	return cmd
}

func newRunCmd(dataDir *string, enableNestLoop, enableSortMerge, dev *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "start the engine and read statements from stdin, one per line",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := engine.New(engine.Config{
				DataDir:         *dataDir,
				EnableNestLoop:  *enableNestLoop,
				EnableSortMerge: *enableSortMerge,
				Dev:             *dev,
			})
			if err != nil {
				return err
			}
			return runREPL(cmd, eng, noParser{})
		},
	}
}
