package domain

import (
	"errors"
	"fmt"
	"math"
	"testing"
	"time"
)

func TestNewQuestion_ClampsPosition(t *testing.T) {
	now := time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		in       float64
		expected float64
	}{
		{12.5, 12.5},
		{0, 0},
		{-3, 0},
		{math.NaN(), 0},
		{math.Inf(1), 0},
	}

	for _, tt := range tests {
		q := NewQuestion("why?", tt.in, now)
		if q.MediaPosition != tt.expected {
			t.Errorf("NewQuestion position %v = %v, want %v", tt.in, q.MediaPosition, tt.expected)
		}
		if !q.IsQuestion() {
			t.Error("expected question kind")
		}
	}
}

func TestNewAnswer_Confidence(t *testing.T) {
	now := time.Now()
	f := func(v float64) *float64 { return &v }

	tests := []struct {
		name      string
		in        *float64
		wantLabel string
	}{
		{"absent", nil, ""},
		{"rounded", f(86.6), "Confidence: 87%"},
		{"zero", f(0), "Confidence: 0%"},
		{"hundred", f(100), "Confidence: 100%"},
		{"above range is dropped", f(140), ""},
		{"negative is dropped", f(-1), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAnswer("text", tt.in, "", 1, now)
			if got := a.ConfidenceLabel(); got != tt.wantLabel {
				t.Errorf("expected %q, got %q", tt.wantLabel, got)
			}
		})
	}
}

func TestNewAnswer_CopiesConfidence(t *testing.T) {
	c := 50.0
	a := NewAnswer("text", &c, "ctx", 2, time.Now())
	c = 99

	if *a.Confidence != 50 {
		t.Errorf("answer confidence changed with caller variable: %v", *a.Confidence)
	}
}

func TestOpError(t *testing.T) {
	err := &OpError{Op: "Upload", Message: "disk full", Status: 500, Err: ErrBackendRejected}

	if err.Error() != "Upload failed: disk full" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if !errors.Is(err, ErrBackendRejected) {
		t.Error("expected OpError to unwrap to ErrBackendRejected")
	}

	wrapped := fmt.Errorf("submit: %w", err)
	if KindOf(wrapped) != KindNetwork {
		t.Errorf("expected network kind, got %s", KindOf(wrapped))
	}
	if UserMessage(wrapped) != "Upload failed: disk full" {
		t.Errorf("unexpected user message %q", UserMessage(wrapped))
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorKind
	}{
		{nil, KindUnknown},
		{ErrSessionBusy, KindConcurrency},
		{fmt.Errorf("x: %w", ErrStaleResult), KindStale},
		{ErrTranscriptionTimeout, KindTimeout},
		{ErrEmptyQuestion, KindValidation},
		{ErrNoSession, KindState},
		{errors.New("other"), KindUnknown},
	}

	for _, tt := range tests {
		if got := KindOf(tt.err); got != tt.want {
			t.Errorf("KindOf(%v) = %s, want %s", tt.err, got, tt.want)
		}
	}

	if UserMessage(ErrStaleResult) != "" {
		t.Error("stale results must not produce a user message")
	}
}
