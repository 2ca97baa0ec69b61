package ingest

import (
	"strings"

	"github.com/TFMV/neongraph/models"
)

// Course is one technology-focused course, split from "CODE - Name".
type Course struct {
	Code string `json:"code"`
	Name string `json:"name,omitempty"`
}

// Card is the content of a department's data card.
type Card struct {
	DepartmentID string             `json:"department_id"`
	Title        string             `json:"title"`
	Spotlight    string             `json:"spotlight,omitempty"`
	Image        string             `json:"image,omitempty"`
	Highlights   []models.Highlight `json:"highlights,omitempty"`
	Courses      []Course           `json:"courses,omitempty"`
}

// BuildCard assembles the card for a department.
func BuildCard(d *models.Department) Card {
	card := Card{
		DepartmentID: d.ID,
		Title:        d.Name,
		Spotlight:    d.Spotlight,
		Image:        d.Image,
	}
	for _, h := range d.Highlights {
		if h.Title != "" {
			card.Highlights = append(card.Highlights, h)
		}
	}
	for _, c := range d.TechCourses {
		card.Courses = append(card.Courses, ParseCourse(c))
	}
	return card
}

// ParseCourse splits on the first " - "; the rest, separators included,
// is the course name.
func ParseCourse(s string) Course {
	code, name, _ := strings.Cut(s, " - ")
	return Course{Code: strings.TrimSpace(code), Name: strings.TrimSpace(name)}
}
