package logging

import (
	"strings"
	"sync"
)

// Recorder is an output sink that keeps every rendered log line in memory.
// An account run attaches one to its logger so the finished result record
// carries the full log transcript.
type Recorder struct {
	mu    sync.Mutex
	lines []string
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Write implements io.Writer. Each write is one formatted log entry.
func (r *Recorder) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	line := strings.TrimRight(string(p), "\n")
	if line != "" {
		r.lines = append(r.lines, line)
	}
	return len(p), nil
}

// Lines returns a copy of the recorded lines.
func (r *Recorder) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.lines))
	copy(out, r.lines)
	return out
}
