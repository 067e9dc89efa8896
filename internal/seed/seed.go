// Package seed loads reference data into a fresh store.
package seed

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"course-market/internal/repository"
)

// File is the layout of a seed document.
type File struct {
	Categories []string `yaml:"categories"`
}

// Parse decodes a seed document.
func Parse(r io.Reader) (File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return File{}, fmt.Errorf("decode seed file: %w", err)
	}
	return f, nil
}

// Load reads the seed document at path.
func Load(path string) (File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return File{}, fmt.Errorf("open seed file: %w", err)
	}
	defer fh.Close()
	return Parse(fh)
}

// Apply inserts every category that does not exist yet and returns how many
// names were processed. Blank and repeated names are skipped.
func Apply(ctx context.Context, categories repository.CategoryRepository, f File, logger *logrus.Logger) (int, error) {
	seen := make(map[string]struct{}, len(f.Categories))
	applied := 0
	for _, name := range f.Categories {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}

		id, err := categories.Ensure(ctx, name)
		if err != nil {
			return applied, fmt.Errorf("seed category %q: %w", name, err)
		}
		applied++
		if logger != nil {
			logger.WithFields(logrus.Fields{"category": name, "id": id}).Debug("category seeded")
		}
	}
	return applied, nil
}
