package devserver

import (
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/kamal-hamza/mq-cli/pkg/timecode"
)

// segmentSeconds is the span each canned transcript line covers
const segmentSeconds = 30

func cannedTranscript(name string) string {
	lines := make([]string, 0, 10)
	for i := 0; i < 10; i++ {
		lines = append(lines, fmt.Sprintf("[%s] Segment %d of %s.", timecode.Format(float64(i*segmentSeconds)), i+1, name))
	}
	return strings.Join(lines, "\n")
}

// excerptAt returns the transcript line covering timestamp
func excerptAt(transcript string, timestamp float64) string {
	lines := strings.Split(transcript, "\n")
	i := int(timestamp) / segmentSeconds
	if i < 0 {
		i = 0
	}
	if i >= len(lines) {
		i = len(lines) - 1
	}
	return lines[i]
}

func cannedAnswer(name, question string, timestamp float64) string {
	return fmt.Sprintf("Around %s in %s the speaker covers this. You asked: %q.",
		timecode.Format(timestamp), name, strings.TrimSpace(question))
}

// cannedConfidence is stable per question so repeated trials match
func cannedConfidence(question string) float64 {
	h := fnv.New32a()
	h.Write([]byte(strings.ToLower(strings.TrimSpace(question))))
	return float64(55 + h.Sum32()%45)
}
