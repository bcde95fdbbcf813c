package story

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/agnivade/levenshtein"
	"gopkg.in/yaml.v3"
)

var (
	ErrChapterNotFound = errors.New("story: chapter not found")
	ErrNodeNotFound    = errors.New("story: node not found")
)

// LoadContent reads a content file and validates it.
func LoadContent(path string) (*Content, error) {
	// Resolve path to prevent directory traversal attacks
	cleanPath := filepath.Clean(path)
	b, err := os.ReadFile(cleanPath) //nolint:gosec // path is cleaned and validated
	if err != nil {
		return nil, err
	}
	c, err := ParseContent(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cleanPath, err)
	}
	return c, nil
}

// ParseContent decodes YAML content and validates it.
func ParseContent(b []byte) (*Content, error) {
	var c Content
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	if err := Validate(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// ChapterFor returns the first chapter whose range contains id.
func (c *Content) ChapterFor(id int) (*Chapter, bool) {
	for i := range c.Chapters {
		if c.Chapters[i].Contains(id) {
			return &c.Chapters[i], true
		}
	}
	return nil, false
}

// Node resolves id through chapter containment.
func (c *Content) Node(id int) (*Node, *Chapter, error) {
	ch, ok := c.ChapterFor(id)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %d is outside every chapter", ErrNodeNotFound, id)
	}
	n, ok := ch.Node(id)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %d in chapter %q", ErrNodeNotFound, id, ch.Name)
	}
	return n, ch, nil
}

// First returns the first configured chapter.
func (c *Content) First() (*Chapter, bool) {
	if len(c.Chapters) == 0 {
		return nil, false
	}
	return &c.Chapters[0], true
}

// ChapterByName looks a chapter up by exact name. The error names the closest
// configured chapter when there is a plausible typo.
func (c *Content) ChapterByName(name string) (*Chapter, error) {
	best, bestDist := "", -1
	for i := range c.Chapters {
		if c.Chapters[i].Name == name {
			return &c.Chapters[i], nil
		}
		d := levenshtein.ComputeDistance(name, c.Chapters[i].Name)
		if bestDist < 0 || d < bestDist {
			best, bestDist = c.Chapters[i].Name, d
		}
	}
	if bestDist >= 0 && bestDist <= maxSuggestDistance(name) {
		return nil, fmt.Errorf("%w: %q (did you mean %q?)", ErrChapterNotFound, name, best)
	}
	return nil, fmt.Errorf("%w: %q", ErrChapterNotFound, name)
}

func maxSuggestDistance(name string) int {
	n := len([]rune(name)) / 3
	if n < 1 {
		return 1
	}
	return n
}
