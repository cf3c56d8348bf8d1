//go:build ignore

// Package main generates a synthetic directory tree for exercising dirsentry.
// Usage: go run scripts/generate-test-tree.go -dirs 50 -depth 3 -output testdata/tree
//
// The generated tree mixes top-level directories (the ones a watch tracks),
// nested subtrees (move targets for the resolver scan), and plain files
// (which the watcher must ignore). Re-running with the same seed produces
// the same tree.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
)

var (
	numDirs   = flag.Int("dirs", 50, "Number of top-level directories to generate")
	maxDepth  = flag.Int("depth", 3, "Maximum nesting depth under each top-level directory")
	numFiles  = flag.Int("files", 20, "Number of plain files scattered at the top level")
	outputDir = flag.String("output", "testdata/tree", "Output directory")
	seed      = flag.Int64("seed", 42, "Random seed for reproducibility")
)

var nameParts = []string{
	"projects", "archive", "inbox", "exports", "media", "builds",
	"reports", "staging", "backups", "drafts", "assets", "vendor",
}

func main() {
	flag.Parse()
	rng := rand.New(rand.NewSource(*seed))

	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "create output dir: %v\n", err)
		os.Exit(1)
	}

	created := 0
	for i := 0; i < *numDirs; i++ {
		name := fmt.Sprintf("%s-%03d", nameParts[rng.Intn(len(nameParts))], i)
		top := filepath.Join(*outputDir, name)
		if err := os.MkdirAll(top, 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "create %s: %v\n", top, err)
			os.Exit(1)
		}
		created++
		created += growSubtree(rng, top, rng.Intn(*maxDepth+1))
	}

	for i := 0; i < *numFiles; i++ {
		path := filepath.Join(*outputDir, fmt.Sprintf("file-%03d.txt", i))
		if err := os.WriteFile(path, []byte(fmt.Sprintf("file %d\n", i)), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "write %s: %v\n", path, err)
			os.Exit(1)
		}
	}

	fmt.Printf("Generated %d directories and %d files under %s\n", created, *numFiles, *outputDir)
	fmt.Println("Try: dirsentry watch", *outputDir)
}

// growSubtree adds up to depth levels of nested directories under parent
// and returns how many it created.
func growSubtree(rng *rand.Rand, parent string, depth int) int {
	if depth == 0 {
		return 0
	}
	created := 0
	for i := 0; i < 1+rng.Intn(3); i++ {
		child := filepath.Join(parent, fmt.Sprintf("sub-%d", i))
		if err := os.MkdirAll(child, 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "create %s: %v\n", child, err)
			os.Exit(1)
		}
		created++
		created += growSubtree(rng, child, depth-1)
	}
	return created
}
