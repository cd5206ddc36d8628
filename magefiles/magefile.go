//go:build mage

// Package main contains Mage build targets for syllabus-engine developer tooling.
package main

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// projectDirs lists the working directories the batch pipeline expects.
var projectDirs = []string{
	"syllabi/text",
	"syllabi/extracted",
	"syllabi/index",
}

const (
	binDir  = "bin"
	binName = "syllabus-engine"
	cmdPkg  = "./cmd/syllabus-engine"
)

func binPath() string {
	return filepath.Join(binDir, binName)
}

// Init creates the syllabi directory structure for batch runs.
func Init() error {
	for _, dir := range projectDirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
		fmt.Println("  ", dir)
	}
	fmt.Println("Project directories initialized.")
	return nil
}

// Build compiles the CLI binary into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	if err := sh.RunV("go", "build", "-o", binPath(), cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", binPath())
	return nil
}

// Test runs the package tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Extract runs a batch extraction over syllabi/text/.
func Extract() error {
	mg.Deps(Init, Build)
	return sh.RunV(binPath(), "batch")
}

// Review lists extracted syllabi flagged for human review.
func Review() error {
	mg.Deps(Build)
	return sh.RunV(binPath(), "review")
}

// Stats prints project metrics: Go production/test LOC and the number of
// syllabi waiting in syllabi/text/.
func Stats() error {
	prodLines, testLines, err := countGoLines(".")
	if err != nil {
		return err
	}
	pending, err := countTextFiles(filepath.Join("syllabi", "text"))
	if err != nil {
		return err
	}

	fmt.Printf("Lines of code (Go, production): %d\n", prodLines)
	fmt.Printf("Lines of code (Go, tests):      %d\n", testLines)
	fmt.Printf("Syllabi (text):                  %d\n", pending)
	return nil
}

// countGoLines walks the tree and counts non-blank lines in production and
// test Go files. The read-only _examples tree is skipped.
func countGoLines(root string) (prod, test int, err error) {
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), "_") {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		n := 0
		for _, line := range bytes.Split(data, []byte("\n")) {
			if len(bytes.TrimSpace(line)) > 0 {
				n++
			}
		}
		if strings.HasSuffix(path, "_test.go") {
			test += n
		} else {
			prod += n
		}
		return nil
	})
	return prod, test, err
}

// countTextFiles counts .txt files in dir. A missing dir counts as zero.
func countTextFiles(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", dir, err)
	}
	n := 0
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".txt" {
			n++
		}
	}
	return n, nil
}
