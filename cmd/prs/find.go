package main

import (
	"fmt"

	"github.com/prsgo/prs/pkg/prs/store"
)

// printAmbiguousMatches reports a query that resolved to zero or more
// than one secret, listing whatever candidates the substring filter
// found.
func printAmbiguousMatches(result store.FindResult, query string) {
	if len(result.Many) == 0 {
		fmt.Printf("No secret found matching %q\n", query)
		return
	}
	fmt.Printf("%q is ambiguous, matching:\n", query)
	for _, s := range result.Many {
		fmt.Printf("  %s\n", s.Name)
	}
}
