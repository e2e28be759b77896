// The main package for the sitemap-indexer executable.
package main

import (
	"os"

	"github.com/JakeFAU/sitemap-indexer/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
