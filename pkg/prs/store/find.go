package store

import (
	"os"
	"path/filepath"
	"strings"
)

// FindResult is the disambiguated outcome of Find: exactly one of One
// (Exact) or Many is meaningful, distinguished by the Exact flag.
type FindResult struct {
	Exact bool
	One   Secret
	Many  []Secret
}

// Find resolves query to a single existing secret (with or without a
// ".gpg" suffix) when possible; otherwise it falls back to every secret
// whose name contains query as a substring, possibly empty.
func (s *Store) Find(query string) (FindResult, error) {
	candidates := []string{query}
	if !strings.HasSuffix(query, ".gpg") {
		candidates = append(candidates, query+".gpg")
	}

	for _, c := range candidates {
		path := filepath.Join(s.Root, filepath.FromSlash(c))
		if info, err := os.Lstat(path); err == nil && !info.IsDir() {
			sec, err := secretFromPath(s.Root, path)
			if err == nil {
				return FindResult{Exact: true, One: sec}, nil
			}
		}
	}

	many, err := s.Filter(query)
	if err != nil {
		return FindResult{}, err
	}
	return FindResult{Many: many}, nil
}
