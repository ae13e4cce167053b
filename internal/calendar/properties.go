// Package calendar implements property availability and booking management
// on top of Google Calendar. Each property has its own calendar; bookings are
// all-day events spanning check-in to check-out, with guest details carried in
// the event summary and description.
package calendar

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// PropertyMap resolves property names to Google Calendar ids. Lookups are
// exact-match on the property name.
type PropertyMap struct {
	calendars map[string]string
}

// LoadProperties reads a YAML mapping of property name to calendar id.
func LoadProperties(path string) (*PropertyMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read properties file: %w", err)
	}

	var calendars map[string]string
	if err := yaml.Unmarshal(data, &calendars); err != nil {
		return nil, fmt.Errorf("parse properties file %s: %w", path, err)
	}
	if len(calendars) == 0 {
		return nil, fmt.Errorf("properties file %s defines no properties", path)
	}
	return &PropertyMap{calendars: calendars}, nil
}

// NewPropertyMap builds a PropertyMap directly, mainly for tests.
func NewPropertyMap(calendars map[string]string) *PropertyMap {
	return &PropertyMap{calendars: calendars}
}

// Resolve returns the calendar id for the property, or "" when unknown.
// Calendar ids are trimmed of surrounding whitespace from the config file.
func (p *PropertyMap) Resolve(propertyName string) string {
	return strings.TrimSpace(p.calendars[propertyName])
}

// Names returns all known property names, sorted.
func (p *PropertyMap) Names() []string {
	names := make([]string, 0, len(p.calendars))
	for name := range p.calendars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
