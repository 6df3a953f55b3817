// Command vininote is the admin CLI of the journal: it reads and repairs
// the same storage the server uses, so a running server picks its writes
// up through the file watcher.
//
// USAGE:
//
//	vininote tastings list --query morgon
//	vininote tastings export > backup.json
//	vininote favorites prune
//	vininote quiz reset grape
//	vininote keys
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(openFromConfig).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
