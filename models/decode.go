package models

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// UnmarshalJSON accepts either a bare string or an object with a title
// (or name) and url.
func (h *Highlight) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*h = Highlight{Title: s}
		return nil
	}
	var obj struct {
		Title string `json:"title"`
		Name  string `json:"name"`
		URL   string `json:"url"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return fmt.Errorf("decoding highlight: %w", err)
	}
	h.Title = obj.Title
	if h.Title == "" {
		h.Title = obj.Name
	}
	h.URL = obj.URL
	return nil
}

// UnmarshalJSON accepts degree strings as well as grouped degree objects
// of the form {"name": "...", "tracks": [...]}, flattening the latter into
// "name: track" strings.
func (dl *DegreeList) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("decoding degrees: %w", err)
	}
	out := make(DegreeList, 0, len(raw))
	for _, item := range raw {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			out = append(out, s)
			continue
		}
		var grouped struct {
			Name   string   `json:"name"`
			Tracks []string `json:"tracks"`
		}
		if err := json.Unmarshal(item, &grouped); err != nil {
			return fmt.Errorf("decoding degree %s: %w", strings.TrimSpace(string(item)), err)
		}
		if len(grouped.Tracks) == 0 {
			out = append(out, grouped.Name)
			continue
		}
		for _, track := range grouped.Tracks {
			out = append(out, grouped.Name+": "+track)
		}
	}
	*dl = out
	return nil
}
