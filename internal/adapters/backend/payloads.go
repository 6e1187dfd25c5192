package backend

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/kamal-hamza/mq-cli/internal/core/ports"
)

type askQuestion struct {
	Question  string  `json:"question"`
	Timestamp float64 `json:"timestamp"`
	Context   string  `json:"context,omitempty"`
}

type askRequest struct {
	MediaID  string      `json:"mediaId"`
	Question askQuestion `json:"question"`
}

type askResponse struct {
	Answer     string      `json:"answer"`
	Confidence *float64    `json:"confidence"`
	Context    textOrBlock `json:"context"`
}

type uploadResponse struct {
	ID         string      `json:"id"`
	MediaID    string      `json:"mediaId"`
	Transcript textOrBlock `json:"transcript"`
}

func (r uploadResponse) mediaID() string {
	if r.ID != "" {
		return r.ID
	}
	return r.MediaID
}

type statusResponse struct {
	Ready      *bool       `json:"ready"`
	Status     string      `json:"status"`
	Progress   flexNumber  `json:"progress"`
	Message    string      `json:"message"`
	Error      string      `json:"error"`
	Transcript textOrBlock `json:"transcript"`
}

func (r statusResponse) toStatus(raw json.RawMessage) *ports.TranscriptStatus {
	st := &ports.TranscriptStatus{
		Progress:   int(r.Progress),
		Message:    r.Message,
		Transcript: r.Transcript.String(),
		Raw:        raw,
	}

	switch strings.ToLower(r.Status) {
	case "completed", "complete", "done", "ready", "transcribed":
		st.Ready = true
	case "failed", "error":
		st.Failed = true
	}
	if r.Ready != nil {
		st.Ready = *r.Ready
	}
	if r.Error != "" {
		st.Failed = true
		if st.Message == "" {
			st.Message = r.Error
		}
	}
	if st.Ready {
		st.Progress = 100
	}
	return st
}

type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (e errorResponse) text() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

// textOrBlock accepts either a JSON string or an object carrying a "text"
// field, which is how backends differ in returning transcripts
type textOrBlock string

func (t *textOrBlock) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = textOrBlock(s)
		return nil
	}

	var block struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(data, &block); err != nil {
		return err
	}
	*t = textOrBlock(block.Text)
	return nil
}

func (t textOrBlock) String() string {
	return string(t)
}

// flexNumber accepts 42, 42.5 or "42"
type flexNumber float64

func (n *flexNumber) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*n = flexNumber(f)
	return nil
}
