package metrics

import (
	"fmt"
	"time"
)

// Timer measures one named stage and reports it to a Recorder when stopped.
type Timer struct {
	start    time.Time
	stage    string
	duration time.Duration
	rec      *Recorder
}

// StartStage starts timing stage. rec may be nil.
func StartStage(rec *Recorder, stage string) *Timer {
	return &Timer{start: time.Now(), stage: stage, rec: rec}
}

// Stop stops the timer, records the duration and returns it.
func (t *Timer) Stop() time.Duration {
	t.duration = time.Since(t.start)
	t.rec.ObserveStage(t.stage, t.duration)
	return t.duration
}

// Duration returns the recorded duration (only valid after Stop()).
func (t *Timer) Duration() time.Duration {
	return t.duration
}

// Stage returns the stage name.
func (t *Timer) Stage() string {
	return t.stage
}

func (t *Timer) String() string {
	return fmt.Sprintf("%s: %v", t.stage, t.duration)
}
