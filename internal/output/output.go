// Package output persists parsed articles as JSON files and extracts their
// Markdown body into sibling .md files.
package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"md-article-parser/internal/models"
)

const (
	jsonExt     = ".json"
	markdownExt = ".md"
)

var ErrNilArticle = errors.New("nil article")

var fileNameReplacer = strings.NewReplacer(" ", "_", "/", "_", "\\", "_")

// FileName derives the JSON file name for an article title
func FileName(title string) string {
	return fileNameReplacer.Replace(title) + jsonExt
}

// Store writes article files to a filesystem
type Store struct {
	fs afero.Fs
}

func NewStore(fs afero.Fs) *Store {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Store{fs: fs}
}

// WriteJSON writes info to dir as two-space indented JSON, replacing any previous
// file for the same title. It returns the written path.
func (s *Store) WriteJSON(dir string, info *models.ArticleInfo) (string, error) {
	if info == nil {
		return "", ErrNilArticle
	}
	return s.writeJSONAs(dir, FileName(info.Title), info)
}

func (s *Store) writeJSONAs(dir, name string, info *models.ArticleInfo) (string, error) {
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode %q: %w", info.Title, err)
	}

	path := filepath.Join(dir, name)
	if err := afero.WriteFile(s.fs, path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// WriteAll writes every non-nil article and returns the written paths in input order.
// Titles repeated within the batch get _2, _3, ... suffixes instead of overwriting.
func (s *Store) WriteAll(dir string, infos []*models.ArticleInfo) ([]string, error) {
	paths := make([]string, 0, len(infos))
	used := make(map[string]bool, len(infos))
	for _, info := range infos {
		if info == nil {
			continue
		}
		name := uniqueName(FileName(info.Title), used)
		used[name] = true

		path, err := s.writeJSONAs(dir, name, info)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func uniqueName(name string, used map[string]bool) string {
	if !used[name] {
		return name
	}
	base := strings.TrimSuffix(name, jsonExt)
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s_%d%s", base, n, jsonExt)
		if !used[candidate] {
			return candidate
		}
	}
}

// ExtractMarkdown reads an article JSON file and writes its mdContent next to it
// with the .md extension. It returns the written path.
func (s *Store) ExtractMarkdown(jsonPath string) (string, error) {
	data, err := afero.ReadFile(s.fs, jsonPath)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", jsonPath, err)
	}

	var info models.ArticleInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return "", fmt.Errorf("decode %s: %w", jsonPath, err)
	}

	mdPath := strings.TrimSuffix(jsonPath, filepath.Ext(jsonPath)) + markdownExt
	if err := afero.WriteFile(s.fs, mdPath, []byte(info.MDContent), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", mdPath, err)
	}
	return mdPath, nil
}

var defaultStore = NewStore(afero.NewOsFs())

// WriteJSON writes info to dir on the local filesystem
func WriteJSON(dir string, info *models.ArticleInfo) (string, error) {
	return defaultStore.WriteJSON(dir, info)
}

// ExtractMarkdown writes the .md sibling of jsonPath on the local filesystem
func ExtractMarkdown(jsonPath string) (string, error) {
	return defaultStore.ExtractMarkdown(jsonPath)
}
