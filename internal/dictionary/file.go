package dictionary

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xxxsen/common/utils"
)

type fileConfig struct {
	Files     []string `json:"files"`
	Lowercase bool     `json:"lowercase"`
}

type fileSource struct {
	name      string
	files     []string
	lowercase bool
}

func (s *fileSource) Name() string {
	return s.name
}

func (s *fileSource) Type() string {
	return "file"
}

func (s *fileSource) Keywords(ctx context.Context) ([]string, error) {
	kws, err := loadKeywordFiles(s.files)
	if err != nil {
		return nil, err
	}
	if s.lowercase {
		for i := range kws {
			kws[i] = strings.ToLower(kws[i])
		}
	}
	return kws, nil
}

func (s *fileSource) Files() []string {
	return s.files
}

// NewFileSource reads one keyword per line from files. Blank lines and lines
// starting with '#' are skipped.
func NewFileSource(name string, files []string, lowercase bool) (ISource, error) {
	clean := make([]string, 0, len(files))
	for _, f := range files {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, fmt.Errorf("resolve keyword file %s: %w", f, err)
		}
		clean = append(clean, abs)
	}
	if len(clean) == 0 {
		return nil, fmt.Errorf("file source requires files")
	}
	return &fileSource{name: name, files: clean, lowercase: lowercase}, nil
}

func createFileSource(name string, args interface{}) (ISource, error) {
	c := &fileConfig{}
	if err := utils.ConvStructJson(args, c); err != nil {
		return nil, err
	}
	return NewFileSource(name, c.Files, c.Lowercase)
}

func init() {
	Register("file", createFileSource)
}

func loadKeywordFiles(files []string) ([]string, error) {
	var keywords []string
	for _, path := range files {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open keyword file %s: %w", path, err)
		}
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			keywords = append(keywords, line)
		}
		if err := scanner.Err(); err != nil {
			f.Close()
			return nil, fmt.Errorf("read keyword file %s: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return nil, fmt.Errorf("close keyword file %s: %w", path, err)
		}
	}
	return keywords, nil
}
