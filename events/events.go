// Package events carries visualization notifications between the reveal
// controller, the intro and the HTTP shell, and optionally mirrors them to
// NATS.
package events

import (
	"context"
	"time"

	"github.com/TFMV/neongraph/models"
)

// Topic names one kind of event. The string value is the wire subject.
type Topic string

// Event topic constants
const (
	TopicNodeClicked            Topic = "viz.node.clicked"
	TopicCategoryRevealed       Topic = "viz.category.revealed"
	TopicCategoryToggled        Topic = "viz.category.toggled"
	TopicVisualizationCreated   Topic = "viz.visualization.created"
	TopicVisualizationDestroyed Topic = "viz.visualization.destroyed"

	// Shell events
	TopicDataCardShown     Topic = "viz.datacard.shown"
	TopicDataCardHidden    Topic = "viz.datacard.hidden"
	TopicDetailViewEntered Topic = "viz.detail.entered"
	TopicDetailViewExited  Topic = "viz.detail.exited"
	TopicIntroSkipped      Topic = "viz.intro.skipped"
)

// Topics lists every topic in a stable order.
var Topics = []Topic{
	TopicNodeClicked,
	TopicCategoryRevealed,
	TopicCategoryToggled,
	TopicVisualizationCreated,
	TopicVisualizationDestroyed,
	TopicDataCardShown,
	TopicDataCardHidden,
	TopicDetailViewEntered,
	TopicDetailViewExited,
	TopicIntroSkipped,
}

// Valid reports whether t is one of the known topics.
func (t Topic) Valid() bool {
	for _, known := range Topics {
		if t == known {
			return true
		}
	}
	return false
}

func (t Topic) String() string { return string(t) }

// Event is one delivered notification.
type Event struct {
	Topic   Topic     `json:"topic"`
	Time    time.Time `json:"time"`
	Payload any       `json:"payload"`
}

// Event types

type NodeClicked struct {
	DepartmentID string          `json:"department_id"`
	NodeID       string          `json:"node_id"`
	Name         string          `json:"name"`
	Category     models.Category `json:"category"`
}

type CategoryRevealed struct {
	DepartmentID string          `json:"department_id"`
	Category     models.Category `json:"category"`
	Index        int             `json:"index"`
}

type CategoryToggled struct {
	DepartmentID string          `json:"department_id"`
	Category     models.Category `json:"category"`
	Enabled      bool            `json:"enabled"`
}

type VisualizationCreated struct {
	DepartmentID string `json:"department_id"`
	SessionID    string `json:"session_id"`
	Name         string `json:"name"`
	Revisit      bool   `json:"revisit"`
}

type VisualizationDestroyed struct {
	DepartmentID string `json:"department_id"`
	SessionID    string `json:"session_id"`
}

type DataCardShown struct {
	DepartmentID string `json:"department_id"`
}

type DataCardHidden struct {
	DepartmentID string `json:"department_id"`
}

type DetailViewEntered struct {
	DepartmentID string `json:"department_id"`
}

type DetailViewExited struct {
	DepartmentID string `json:"department_id"`
}

type IntroSkipped struct {
	Paths int `json:"paths"`
}

// Publisher is the interface for emitting events outside the process.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}
