package prompt

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Template is a system/user prompt pair with {{KEY}} placeholders.
type Template struct {
	System string `yaml:"system"`
	User   string `yaml:"user"`
}

// Catalog resolves template names to prompts.
type Catalog struct {
	templates map[string]Template
}

// overrideFile is the on-disk layout of a template override file.
type overrideFile struct {
	Templates map[string]Template `yaml:"templates"`
}

// NewCatalog returns a catalog holding the built-in templates.
func NewCatalog() *Catalog {
	return &Catalog{templates: defaults()}
}

// LoadCatalog returns the built-in catalog with overrides from a YAML file
// applied. An empty path yields the built-in catalog. Overrides may replace
// only the user or only the system text of a template, and may add new
// template names.
func LoadCatalog(path string) (*Catalog, error) {
	c := NewCatalog()
	if path == "" {
		return c, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read templates file: %w", err)
	}
	var f overrideFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse templates file %s: %w", path, err)
	}
	for name, t := range f.Templates {
		base := c.templates[name]
		if base.System == "" {
			base.System = SystemTemplate
		}
		if t.System != "" {
			base.System = t.System
		}
		if t.User != "" {
			base.User = t.User
		}
		if base.User == "" {
			return nil, fmt.Errorf("template %q has no user prompt", name)
		}
		c.templates[name] = base
	}
	return c, nil
}

// Names returns the known template names, sorted.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.templates))
	for n := range c.templates {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the template called name.
func (c *Catalog) Lookup(name string) (Template, bool) {
	t, ok := c.templates[name]
	return t, ok
}

// Render fills the placeholders of template name with params.
func (c *Catalog) Render(name string, params map[string]string) (system, user string, err error) {
	t, ok := c.Lookup(name)
	if !ok {
		return "", "", fmt.Errorf("unknown prompt template %q", name)
	}
	return Fill(t.System, params), Fill(t.User, params), nil
}

var placeholder = regexp.MustCompile(`\{\{[A-Z0-9_]+\}\}`)

// Fill replaces every {{KEY}} in text with params[KEY]. Placeholders with
// no matching parameter are replaced with an empty string.
func Fill(text string, params map[string]string) string {
	for key, value := range params {
		text = strings.ReplaceAll(text, "{{"+key+"}}", value)
	}
	return placeholder.ReplaceAllString(text, "")
}
