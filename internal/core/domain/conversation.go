package domain

import (
	"fmt"
	"math"
	"time"
)

// EntryKind tags a ConversationEntry
type EntryKind string

const (
	EntryQuestion EntryKind = "question"
	EntryAnswer   EntryKind = "answer"
)

// ConversationEntry is one line of the Q&A log.
// Questions leave Confidence and SupportingContext empty.
type ConversationEntry struct {
	Kind              EntryKind `json:"kind"`
	Text              string    `json:"text"`
	At                time.Time `json:"at"`             // askedAt or answeredAt
	MediaPosition     float64   `json:"media_position"` // Seconds, snapshot taken when the question was asked
	Confidence        *float64  `json:"confidence,omitempty"`
	SupportingContext string    `json:"supporting_context,omitempty"`
}

// NewQuestion creates a question entry. Negative or NaN positions become 0.
func NewQuestion(text string, position float64, askedAt time.Time) ConversationEntry {
	return ConversationEntry{
		Kind:          EntryQuestion,
		Text:          text,
		At:            askedAt,
		MediaPosition: ClampPosition(position),
	}
}

// NewAnswer creates an answer entry bound to the question's position snapshot
func NewAnswer(text string, confidence *float64, supportingContext string, position float64, answeredAt time.Time) ConversationEntry {
	return ConversationEntry{
		Kind:              EntryAnswer,
		Text:              text,
		At:                answeredAt,
		MediaPosition:     ClampPosition(position),
		Confidence:        NormalizeConfidence(confidence),
		SupportingContext: supportingContext,
	}
}

// IsQuestion reports whether the entry is a question
func (e ConversationEntry) IsQuestion() bool {
	return e.Kind == EntryQuestion
}

// ConfidenceLabel renders "Confidence: 87%" or "" when absent
func (e ConversationEntry) ConfidenceLabel() string {
	if e.Confidence == nil {
		return ""
	}
	return fmt.Sprintf("Confidence: %d%%", int(math.Round(*e.Confidence)))
}

// WallClock renders the entry time as HH:MM
func (e ConversationEntry) WallClock() string {
	return e.At.Format("15:04")
}

// Exchange is a question together with the answer it produced
type Exchange struct {
	Question ConversationEntry
	Answer   ConversationEntry
}

// ClampPosition maps invalid positions to 0
func ClampPosition(seconds float64) float64 {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return 0
	}
	return seconds
}

// NormalizeConfidence keeps values in [0, 100] and drops anything else
func NormalizeConfidence(c *float64) *float64 {
	if c == nil || math.IsNaN(*c) || *c < 0 || *c > 100 {
		return nil
	}
	v := *c
	return &v
}
