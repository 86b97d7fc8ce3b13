// Package msgcat holds the client's user-facing lines. The embedded English
// file is always loaded first; YAML files in an override directory may then
// replace individual lines.
package msgcat

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	yaml "gopkg.in/yaml.v3"
)

//go:embed messages.en.yaml
var embedded []byte

// Catalog maps every Key to a parsed template. It is immutable once built.
type Catalog struct {
	lines map[Key]*template.Template
}

// New loads the embedded messages and then the overrides in dir, if any.
func New(overrideDir string) (*Catalog, error) {
	texts, err := parseSections("messages.en.yaml", embedded)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(overrideDir) != "" {
		over, err := loadDir(overrideDir)
		if err != nil {
			return nil, err
		}
		for k, v := range over {
			texts[k] = v
		}
	}
	return compile(texts)
}

// Default is New without overrides. The embedded file is part of the
// binary, so a failure here is a build defect.
func Default() *Catalog {
	c, err := New("")
	if err != nil {
		panic(err)
	}
	return c
}

func compile(texts map[Key]string) (*Catalog, error) {
	var missing []string
	c := &Catalog{lines: make(map[Key]*template.Template, len(Keys))}
	for _, k := range Keys {
		text, ok := texts[k]
		if !ok || strings.TrimSpace(text) == "" {
			missing = append(missing, string(k))
			continue
		}
		t, err := template.New(string(k)).Option("missingkey=error").Parse(text)
		if err != nil {
			return nil, fmt.Errorf("message %s: %w", k, err)
		}
		c.lines[k] = t
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("messages missing: %s", strings.Join(missing, ", "))
	}
	return c, nil
}

// loadDir reads *.yaml and *.yml in name order. A key set by two files is
// an error rather than a silent last-wins.
func loadDir(dir string) (map[Key]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read messages dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if !e.IsDir() && (ext == ".yaml" || ext == ".yml") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	out := make(map[Key]string)
	from := make(map[Key]string)
	for _, name := range names {
		raw, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		texts, err := parseSections(name, raw)
		if err != nil {
			return nil, err
		}
		for k, v := range texts {
			if !known(k) {
				return nil, fmt.Errorf("%s: unknown message %s", name, k)
			}
			if prev, ok := from[k]; ok {
				return nil, fmt.Errorf("message %s set in both %s and %s", k, prev, name)
			}
			from[k] = name
			out[k] = v
		}
	}
	return out, nil
}

// parseSections reads a two-level document of section: {name: text}.
func parseSections(name string, raw []byte) (map[Key]string, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	out := make(map[Key]string)
	if len(doc.Content) == 0 {
		return out, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%s: top level must be a mapping of sections", name)
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		section, body := root.Content[i].Value, root.Content[i+1]
		if body.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("%s:%d: section %s must be a mapping", name, body.Line, section)
		}
		for j := 0; j+1 < len(body.Content); j += 2 {
			key, val := body.Content[j].Value, body.Content[j+1]
			if val.Kind != yaml.ScalarNode || val.ShortTag() != "!!str" {
				return nil, fmt.Errorf("%s:%d: %s.%s must be a string", name, val.Line, section, key)
			}
			out[Key(section+"."+key)] = val.Value
		}
	}
	return out, nil
}

var errUnknownKey = errors.New("unknown message")

// Render executes the line for k. Data fields the template names must exist.
func (c *Catalog) Render(k Key, data any) (string, error) {
	t, ok := c.lines[k]
	if !ok {
		return "", fmt.Errorf("%w: %s", errUnknownKey, k)
	}
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Text is Render that returns fallback on any failure.
func (c *Catalog) Text(k Key, data any, fallback string) string {
	if c == nil {
		return fallback
	}
	s, err := c.Render(k, data)
	if err != nil {
		return fallback
	}
	return s
}
