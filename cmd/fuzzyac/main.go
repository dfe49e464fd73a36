// fuzzyac scans text for dictionary keywords, exactly or within a bounded
// edit distance.
package main

import (
	"os"

	"github.com/xxxsen/fuzzyac/cmd/fuzzyac/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
