package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/JakeFAU/sitemap-indexer/internal/config"
	googlenotifier "github.com/JakeFAU/sitemap-indexer/internal/notifier/google"
)

var troubleshooting = []string{
	"Check that the service account email is added to Search Console as an Owner",
	"Verify the Web Search Indexing API is enabled in Google Cloud",
	"Make sure the service account JSON file is valid",
}

// printDiagnostics reports a setup or run failure with hints.
func printDiagnostics(w io.Writer, cfg config.Config, err error) {
	if errors.Is(err, googlenotifier.ErrCredentialsNotFound) {
		fmt.Fprintf(w, "\nError: service account file %q not found!\n", cfg.Indexer.CredentialsFile)
		fmt.Fprintln(w, "Pass --credentials, set indexer.credentials_file, or export INDEXER_INDEXER_CREDENTIALS_FILE.")
		return
	}
	fmt.Fprintf(w, "\nError: %v\n", err)
	fmt.Fprintln(w, "\nTroubleshooting:")
	for i, hint := range troubleshooting {
		fmt.Fprintf(w, "%d. %s\n", i+1, hint)
	}
}
