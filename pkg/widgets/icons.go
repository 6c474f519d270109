package widgets

import (
	"embed"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"gopkg.in/yaml.v3"
)

//go:embed icons/*.yaml
var builtinIcons embed.FS

// IconCatalog holds sanitised SVG markup by icon name. Icon pickers offer the
// catalogue names as their items.
type IconCatalog struct {
	icons map[string]string
}

type iconDocument struct {
	Icons []struct {
		Name string `yaml:"name"`
		SVG  string `yaml:"svg"`
	} `yaml:"icons"`
}

// DefaultIcons returns the embedded catalogue.
func DefaultIcons() *IconCatalog {
	catalog, err := LoadIcons(builtinIcons)
	if err != nil {
		panic(fmt.Sprintf("widgets: builtin icons: %v", err))
	}
	return catalog
}

// LoadIcons walks fsys and reads every YAML document into a catalogue. Names
// must be unique across files. Markup that sanitises to nothing is an error.
func LoadIcons(fsys fs.FS) (*IconCatalog, error) {
	catalog := &IconCatalog{icons: make(map[string]string)}
	if fsys == nil {
		return catalog, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isYAML(path) {
			return nil
		}
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("widgets: read %s: %w", path, err)
		}
		var doc iconDocument
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("widgets: parse %s: %w", path, err)
		}
		for _, icon := range doc.Icons {
			if err := catalog.Add(icon.Name, icon.SVG); err != nil {
				return fmt.Errorf("%w (file %s)", err, path)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return catalog, nil
}

// Add registers an icon after sanitising its markup.
func (c *IconCatalog) Add(name, svg string) error {
	key := strings.TrimSpace(name)
	if key == "" {
		return fmt.Errorf("widgets: icon name is required")
	}
	if _, exists := c.icons[key]; exists {
		return fmt.Errorf("widgets: duplicate icon %q", key)
	}
	cleaned := SanitizeIcon(svg)
	if cleaned == "" {
		return fmt.Errorf("widgets: icon %q has no usable markup", key)
	}
	c.icons[key] = cleaned
	return nil
}

// Markup returns the sanitised SVG of an icon.
func (c *IconCatalog) Markup(name string) (string, bool) {
	if c == nil {
		return "", false
	}
	svg, ok := c.icons[name]
	return svg, ok
}

// Names returns the icon names sorted alphabetically.
func (c *IconCatalog) Names() []string {
	if c == nil {
		return nil
	}
	names := make([]string, 0, len(c.icons))
	for name := range c.icons {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Items lists the catalogue as widget items whose value is the icon name.
func (c *IconCatalog) Items() []Item {
	names := c.Names()
	items := make([]Item, 0, len(names))
	for _, name := range names {
		items = append(items, Item{Label: name, Value: name, Icon: c.icons[name]})
	}
	return items
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

var (
	iconPolicyOnce sync.Once
	iconPolicy     *bluemonday.Policy
)

// SanitizeIcon keeps a conservative SVG subset and strips everything else.
func SanitizeIcon(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(iconSanitizer().Sanitize(trimmed))
}

func iconSanitizer() *bluemonday.Policy {
	iconPolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		shapes := []string{"path", "circle", "rect", "line", "polyline", "polygon", "ellipse"}
		policy.AllowElements(append([]string{"svg", "g", "title"}, shapes...)...)
		policy.AllowAttrs(
			"xmlns", "viewBox", "width", "height", "fill", "stroke",
			"stroke-width", "aria-hidden", "role",
		).OnElements("svg")
		policy.AllowAttrs(
			"d", "cx", "cy", "r", "x", "y", "x1", "y1", "x2", "y2",
			"points", "rx", "ry", "fill", "stroke", "stroke-width",
		).OnElements(shapes...)
		iconPolicy = policy
	})
	return iconPolicy
}
