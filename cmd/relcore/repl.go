package main

import (
	"bufio"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/relcore/relcore/pkg/ast"
	"github.com/relcore/relcore/pkg/engine"
)

// runREPL reads one statement per line from cmd's stdin, parses it with
// parser, executes it against eng, and prints the result or error.
func runREPL(cmd *cobra.Command, eng *engine.Engine, parser ast.Parser) error {
	out := cmd.OutOrStdout()
	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		stmt, err := parser.Parse(line)
		if err != nil {
			fmt.Fprintln(out, "parse error:", err)
			continue
		}
		res, err := eng.Execute(stmt)
		if err != nil {
			fmt.Fprintln(out, "error:", err)
			continue
		}
		printResult(out, res)
	}
	return scanner.Err()
}

func printResult(out interface{ Write([]byte) (int, error) }, res *engine.Result) {
	if res.AffectedRows > 0 {
		fmt.Fprintf(out, "OK, %d row(s) affected\n", res.AffectedRows)
		return
	}
	for _, row := range res.Rows {
		fmt.Fprintln(out, string(row))
	}
	fmt.Fprintf(out, "(%d rows)\n", len(res.Rows))
}
