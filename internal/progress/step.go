package progress

// Step is a stage of a translation run.
type Step int

const (
	StepIdle Step = iota
	StepUploading
	StepAnalyzing
	StepTranslating
	StepGenerating
	StepCompleted
	StepError
)

var (
	stepName = map[Step]string{
		StepIdle:        "idle",
		StepUploading:   "uploading",
		StepAnalyzing:   "analyzing",
		StepTranslating: "translating",
		StepGenerating:  "generating",
		StepCompleted:   "completed",
		StepError:       "error",
	}
	nameStep = map[string]Step{
		"idle":        StepIdle,
		"uploading":   StepUploading,
		"analyzing":   StepAnalyzing,
		"translating": StepTranslating,
		"generating":  StepGenerating,
		"completed":   StepCompleted,
		"error":       StepError,
	}
)

func (s Step) String() string {
	if name, ok := stepName[s]; ok {
		return name
	}
	return "unknown"
}

// parseStep returns the step for its name.
func parseStep(name string) (Step, bool) {
	s, ok := nameStep[name]
	return s, ok
}

func (s Step) Terminal() bool {
	return s == StepCompleted || s == StepError
}

// Busy reports whether a run is in flight.
func (s Step) Busy() bool {
	return s != StepIdle && !s.Terminal()
}

func canTransition(from, to Step) bool {
	switch to {
	case StepIdle:
		return true
	case StepUploading:
		return from == StepIdle || from.Terminal()
	case StepError:
		return from.Busy()
	}
	return from.Busy() && to >= from
}
