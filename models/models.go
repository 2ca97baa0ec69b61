// Package models provides the data structures shared by the neongraph packages.
// It defines the department dataset, the partnership graph nodes and links,
// and the closed set of node categories.
package models

import (
	"fmt"
	"time"
)

// Category tags a graph node or link.
type Category int

const (
	CategoryCentral Category = iota
	CategoryDegree
	CategoryInternal
	CategoryExternal
	CategoryTrack
)

// RevealOrder is the order in which categories are unlocked in a detail view.
// It doubles as the list of categories shown in the legend.
var RevealOrder = []Category{CategoryDegree, CategoryInternal, CategoryExternal}

// String returns the wire name of the category.
func (c Category) String() string {
	switch c {
	case CategoryCentral:
		return "central"
	case CategoryDegree:
		return "degree"
	case CategoryInternal:
		return "internal"
	case CategoryExternal:
		return "external"
	case CategoryTrack:
		return "track"
	}
	return fmt.Sprintf("category(%d)", int(c))
}

// Label returns the legend label for the category.
func (c Category) Label() string {
	switch c {
	case CategoryCentral:
		return "Department"
	case CategoryDegree:
		return "Degree Programs"
	case CategoryInternal:
		return "Internal Partners"
	case CategoryExternal:
		return "External Partners"
	case CategoryTrack:
		return "Tracks"
	}
	return c.String()
}

// ParseCategory converts a wire name back into a Category.
func ParseCategory(s string) (Category, error) {
	switch s {
	case "central":
		return CategoryCentral, nil
	case "degree":
		return CategoryDegree, nil
	case "internal":
		return CategoryInternal, nil
	case "external":
		return CategoryExternal, nil
	case "track", "degree-track":
		return CategoryTrack, nil
	}
	return 0, fmt.Errorf("unknown category %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Category) UnmarshalText(b []byte) error {
	parsed, err := ParseCategory(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Highlight is a featured project linked from a department card.
type Highlight struct {
	Title string `json:"title"`
	URL   string `json:"url,omitempty"`
}

// Department is one entry of the department dataset.
type Department struct {
	ID               string      `json:"id"`
	Name             string      `json:"name"`
	Degrees          DegreeList  `json:"degrees"`
	InternalPartners []string    `json:"internalPartners"`
	ExternalPartners []string    `json:"externalPartners"`
	Highlights       []Highlight `json:"highlights,omitempty"`
	Spotlight        string      `json:"spotlight,omitempty"`
	Image            string      `json:"image,omitempty"`
	TechCourses      []string    `json:"techCourses,omitempty"`
}

// DegreeList holds degree strings. A degree with a track is written
// "Base Program: Track Name Track".
type DegreeList []string

// Dataset is a loaded department document.
type Dataset struct {
	ID          string       `json:"-"`
	Source      string       `json:"-"`
	LoadedAt    time.Time    `json:"-"`
	Departments []Department `json:"departments"`
}

// Node is a vertex of the partnership graph. Position and velocity are
// mutated by the force simulation; a fixed node keeps FX/FY.
type Node struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Category   Category `json:"category"`
	Radius     float64  `json:"radius"`
	BaseRadius float64  `json:"base_radius"`
	X          float64  `json:"x"`
	Y          float64  `json:"y"`
	VX         float64  `json:"-"`
	VY         float64  `json:"-"`
	Fixed      bool     `json:"fixed,omitempty"`
	FX         float64  `json:"-"`
	FY         float64  `json:"-"`
	Tracks     []string `json:"tracks,omitempty"`
	ParentID   string   `json:"parent_id,omitempty"`
}

// Link is a directed association between two nodes.
type Link struct {
	Source   string   `json:"source"`
	Target   string   `json:"target"`
	Category Category `json:"category"`
}
