// Package platform provides the operating system slugs a catalog can be
// filtered by.
package platform

import (
	"sort"
	"strings"
)

// Slug identifies a platform flag of a game card.
type Slug string

// Platform slug constants. These match the keys of the store's platforms object.
const (
	SlugWindows Slug = "windows"
	SlugMac     Slug = "mac"
	SlugLinux   Slug = "linux"
)

// slugNames maps each slug to its display name.
var slugNames = map[Slug]string{
	SlugWindows: "Windows",
	SlugMac:     "macOS",
	SlugLinux:   "Linux",
}

// aliases maps common spellings to slugs.
var aliases = map[string]Slug{
	"windows": SlugWindows,
	"win":     SlugWindows,
	"pc":      SlugWindows,
	"mac":     SlugMac,
	"macos":   SlugMac,
	"osx":     SlugMac,
	"linux":   SlugLinux,
	"steamos": SlugLinux,
}

// String returns the slug as a string.
func (s Slug) String() string {
	return string(s)
}

// IsValid returns true if the slug is a known platform.
func (s Slug) IsValid() bool {
	_, ok := slugNames[s]
	return ok
}

// Name returns the display name of the platform, or the slug if unknown.
func (s Slug) Name() string {
	if name, ok := slugNames[s]; ok {
		return name
	}
	return string(s)
}

// Parse resolves a user supplied platform name (case-insensitive, aliases
// allowed) to a slug.
func Parse(name string) (Slug, bool) {
	slug, ok := aliases[strings.ToLower(strings.TrimSpace(name))]
	return slug, ok
}

// AllSlugs returns all defined platform slugs in a stable order.
func AllSlugs() []Slug {
	slugs := make([]Slug, 0, len(slugNames))
	for slug := range slugNames {
		slugs = append(slugs, slug)
	}
	sort.Slice(slugs, func(i, j int) bool { return slugs[i] < slugs[j] })
	return slugs
}
