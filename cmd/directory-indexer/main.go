// Command directory-indexer indexes directory trees into a semantic
// search index and serves search/get operations over a CLI or an MCP
// stdio interface.
package main

import (
	"os"

	"github.com/directory-indexer/directory-indexer/cmd/directory-indexer/cmd"
	"github.com/directory-indexer/directory-indexer/internal/errs"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(errs.ExitCode(err))
	}
}
