package registry

import (
	"os"
	"path/filepath"

	senerr "github.com/dirsentry/dirsentry/internal/errors"
)

// Seed creates a registry populated with the watch root's immediate child
// directories. Non-directory entries are skipped. Returns the seeded paths in
// directory order so callers can report what was found at startup.
//
// Seeding runs once, before the watch loop; an unreadable root is the one
// startup failure that aborts the process.
func Seed(root string) (*Registry, []string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, nil, senerr.Wrap(senerr.ErrCodeSeedScan, err)
	}

	reg := New()
	var seeded []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		path := filepath.Join(root, entry.Name())
		reg.Insert(path)
		seeded = append(seeded, path)
	}

	return reg, seeded, nil
}
