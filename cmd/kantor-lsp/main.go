// Command kantor-lsp runs a Kantor language server over stdio.
package main

import (
	"fmt"
	"os"

	"github.com/gaminde/kantor/lsp"
)

func main() {
	if err := lsp.Run(os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
