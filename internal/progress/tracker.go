package progress

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrStaleRun          = errors.New("run superseded")
)

// Status is the transient progress record shown to the user.
type Status struct {
	Step     Step
	Progress int
	Message  string
}

type Event struct {
	RunID  string
	Status Status
	Time   time.Time
}

// Tracker owns the single status record. Only the current run may update it;
// updates are fanned out to subscribers as events.
type Tracker struct {
	mu          sync.Mutex
	runID       string
	status      Status
	idleMessage string
	subscribers map[int]chan Event
	nextSub     int
	now         func() time.Time
}

func NewTracker(idleMessage string) *Tracker {
	return &Tracker{
		status:      Status{Step: StepIdle, Message: idleMessage},
		idleMessage: idleMessage,
		subscribers: make(map[int]chan Event),
		now:         time.Now,
	}
}

func (t *Tracker) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

func (t *Tracker) RunID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.runID
}

// Begin starts a new run in the uploading step. Any run still in flight is
// superseded: its later updates are rejected with ErrStaleRun.
func (t *Tracker) Begin(progress int, message string) string {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.runID = uuid.NewString()
	t.set(Status{Step: StepUploading, Progress: clamp(progress), Message: message})
	return t.runID
}

// Advance moves the run forward. Progress never decreases within a run.
func (t *Tracker) Advance(runID string, step Step, progress int, message string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if runID != t.runID {
		return ErrStaleRun
	}
	if step == StepError || step == StepIdle || step == StepUploading {
		return fmt.Errorf("%w: use Fail, Reset or Begin for %s", ErrInvalidTransition, step)
	}
	if !canTransition(t.status.Step, step) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, t.status.Step, step)
	}

	t.set(Status{Step: step, Progress: max(t.status.Progress, clamp(progress)), Message: message})
	return nil
}

// Reporter returns a callback bound to runID that maps each milestone to a step
// with stepFor. Stale or backwards milestones are dropped.
func (t *Tracker) Reporter(runID string, stepFor func(progress int) Step) func(message string, progress int) {
	return func(message string, progress int) {
		step := t.Status().Step
		if stepFor != nil {
			step = stepFor(progress)
		}
		_ = t.Advance(runID, step, progress, message)
	}
}

func (t *Tracker) Complete(runID, message string) error {
	return t.Advance(runID, StepCompleted, 100, message)
}

func (t *Tracker) Fail(runID, message string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if runID != t.runID {
		return ErrStaleRun
	}
	if !canTransition(t.status.Step, StepError) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, t.status.Step, StepError)
	}

	t.set(Status{Step: StepError, Progress: 0, Message: message})
	return nil
}

// Reset abandons the current run and returns to idle.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.runID = ""
	t.set(Status{Step: StepIdle, Message: t.idleMessage})
}

// Subscribe registers a listener. Events are dropped for a listener whose
// buffer is full. The returned function unsubscribes and closes the channel.
func (t *Tracker) Subscribe(buffer int) (<-chan Event, func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.nextSub
	t.nextSub++
	ch := make(chan Event, buffer)
	t.subscribers[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			t.mu.Lock()
			defer t.mu.Unlock()
			delete(t.subscribers, id)
			close(ch)
		})
	}
}

func (t *Tracker) set(status Status) {
	t.status = status
	event := Event{RunID: t.runID, Status: status, Time: t.now()}
	for _, ch := range t.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}

func clamp(progress int) int {
	return min(max(progress, 0), 100)
}
