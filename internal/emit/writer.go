package emit

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// WriteFiles writes the generated files into dir, creating it when
// missing, and returns the paths written in file order so callers can
// report them.
func WriteFiles(files []GeneratedFile, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, fmt.Errorf("creating output directory %s: %w", dir, err)
	}

	paths := make([]string, 0, len(files))

	for _, f := range files {
		path := filepath.Join(dir, f.Filename)

		if err := os.WriteFile(path, f.Content, filePerm); err != nil {
			return nil, fmt.Errorf("writing %s: %w", path, err)
		}

		paths = append(paths, path)
	}

	return paths, nil
}
