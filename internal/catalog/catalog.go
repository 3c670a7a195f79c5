// Package catalog maps the names people speak to the names ZoneMinder and the face
// recognizer store. The catalog is loaded once at startup and never mutated.
package catalog

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/viper"

	"github.com/ab0utbla-k/zm-alarm-skill/internal/alarm"
)

// UnknownFace is the database label the recognizer assigns to faces it cannot match.
const UnknownFace = "Unknown"

const strangerName = "stranger"

// ErrInvalidCatalog reports a catalog file that is empty or inconsistent.
var ErrInvalidCatalog = errors.New("invalid catalog")

// Entry maps spoken names to one stored name.
type Entry struct {
	Name          string   `mapstructure:"name"`
	FriendlyNames []string `mapstructure:"friendly_names"`
}

// Catalog holds the cameras, faces, and objects known to the skill.
type Catalog struct {
	Cameras []Entry `mapstructure:"cameras"`
	Faces   []Entry `mapstructure:"faces"`
	Objects []Entry `mapstructure:"objects"`
}

// Subject is a resolved face or object to search for.
type Subject struct {
	Filter alarm.Filter
	// Spoken is the name used when talking back to the user.
	Spoken string
}

// Load reads a catalog from a YAML or JSON file.
func Load(path string) (*Catalog, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("cannot read catalog %s: %w", path, err)
	}

	var c Catalog
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("cannot unmarshal catalog %s: %w", path, err)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return &c, nil
}

// Validate checks that every entry has a name and that no friendly name is claimed twice
// within the same section.
func (c *Catalog) Validate() error {
	if len(c.Cameras) == 0 {
		return fmt.Errorf("%w: no cameras configured", ErrInvalidCatalog)
	}

	sections := map[string][]Entry{
		"cameras": c.Cameras,
		"faces":   c.Faces,
		"objects": c.Objects,
	}
	for section, entries := range sections {
		seen := make(map[string]string)
		for _, e := range entries {
			if strings.TrimSpace(e.Name) == "" {
				return fmt.Errorf("%w: %s entry without a name", ErrInvalidCatalog, section)
			}
			for _, friendly := range e.FriendlyNames {
				key := normalize(friendly)
				if owner, ok := seen[key]; ok && owner != e.Name {
					return fmt.Errorf("%w: %s name %q maps to both %q and %q",
						ErrInvalidCatalog, section, friendly, owner, e.Name)
				}
				seen[key] = e.Name
			}
		}
	}

	return nil
}

// ResolveCamera returns the ZoneMinder monitor name for a spoken camera name.
// A ZoneMinder name spoken verbatim also resolves.
func (c *Catalog) ResolveCamera(friendly string) (string, bool) {
	return lookup(c.Cameras, friendly)
}

// CameraNames returns every ZoneMinder monitor name in catalog order.
func (c *Catalog) CameraNames() []string {
	names := make([]string, 0, len(c.Cameras))
	for _, e := range c.Cameras {
		names = append(names, e.Name)
	}
	return names
}

// ResolveSubject turns a spoken name into a label filter. Known faces filter on the face,
// known objects on the object; anything else searches for unrecognized faces.
func (c *Catalog) ResolveSubject(friendly string) Subject {
	if name, ok := lookup(c.Faces, friendly); ok {
		if name == UnknownFace {
			return Subject{Filter: alarm.Filter{Face: UnknownFace}, Spoken: strangerName}
		}
		return Subject{Filter: alarm.Filter{Face: name}, Spoken: friendly}
	}

	if name, ok := lookup(c.Objects, friendly); ok {
		return Subject{Filter: alarm.Filter{Object: name}, Spoken: friendly}
	}

	return Subject{Filter: alarm.Filter{Face: UnknownFace}, Spoken: strangerName}
}

func lookup(entries []Entry, friendly string) (string, bool) {
	key := normalize(friendly)
	if key == "" {
		return "", false
	}

	for _, e := range entries {
		if normalize(e.Name) == key {
			return e.Name, true
		}
		if slices.ContainsFunc(e.FriendlyNames, func(n string) bool { return normalize(n) == key }) {
			return e.Name, true
		}
	}

	return "", false
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
