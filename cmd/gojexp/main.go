// Command gojexp evaluates expressions from the command line.
//
//	gojexp --doc order.json eval 'sum($.items[].price)'
//	gojexp dump '-2 ^ 4'
//	gojexp repl
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sandrolain/gojexp/internal/cli"
)

func main() {
	if err := cli.Run(context.Background(), os.Stdout, os.Exit, os.Args[1:]...); err != nil {
		fmt.Fprintln(os.Stderr, "gojexp:", err)
		os.Exit(cli.ExitCode(err))
	}
}
