// Package contexts serves the role/persona/scenario resources from a
// directory tree under the runtime path:
//
//	contexts/
//	  general_instructions.md
//	  roles/*.md
//	  personas/*.md
//	  scenarios/*.md
//
// Resources are markdown, .html files are converted to plain text on
// load.
package contexts

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/inbucket/html2text"

	"github.com/sandevgo/vizchat/internal/core"
)

const instructionsFile = "general_instructions.md"

var resourceExtensions = []string{".md", ".html", ".txt"}

type Store struct {
	root string
}

func NewStore(root string) *Store {
	return &Store{root: root}
}

func (s *Store) List(ctx context.Context) (core.ContextOptions, error) {
	roles, err := s.listCategory(core.CategoryRole)
	if err != nil {
		return core.ContextOptions{}, err
	}
	personas, err := s.listCategory(core.CategoryPersona)
	if err != nil {
		return core.ContextOptions{}, err
	}
	scenarios, err := s.listCategory(core.CategoryScenario)
	if err != nil {
		return core.ContextOptions{}, err
	}
	return core.ContextOptions{Roles: roles, Personas: personas, Scenarios: scenarios}, nil
}

func (s *Store) listCategory(category core.ContextCategory) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, string(category)))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", category, err)
	}

	seen := make(map[string]bool)
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if !isResourceExt(ext) {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ext)
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Load finds the first extension that exists for the name. Path
// elements are sanitized so a name cannot escape the root.
func (s *Store) Load(ctx context.Context, category core.ContextCategory, name string) (string, error) {
	base := filepath.Base(name)
	for _, ext := range resourceExtensions {
		path := filepath.Join(s.root, string(category), base+ext)
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("load %s/%s: %w", category, base, err)
		}
		if ext == ".html" {
			return htmlToText(string(data))
		}
		return string(data), nil
	}
	return "", fmt.Errorf("context %s/%s: %w", category, base, os.ErrNotExist)
}

func (s *Store) Instructions(ctx context.Context) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.root, instructionsFile))
	if err != nil {
		return "", fmt.Errorf("load instructions: %w", err)
	}
	return string(data), nil
}

func htmlToText(html string) (string, error) {
	text, err := html2text.FromString(html, html2text.Options{TextOnly: true})
	if err != nil {
		return "", fmt.Errorf("convert html: %w", err)
	}
	return text, nil
}

func isResourceExt(ext string) bool {
	for _, e := range resourceExtensions {
		if e == ext {
			return true
		}
	}
	return false
}
