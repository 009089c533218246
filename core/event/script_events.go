package event

// ScriptStarted is published when an automation script begins executing.
type ScriptStarted struct {
	baseSessionEvent
	ScriptName string
}

func NewScriptStarted(sessionID, scriptName string) *ScriptStarted {
	return &ScriptStarted{
		baseSessionEvent: baseSessionEvent{sessionID: sessionID},
		ScriptName:       scriptName,
	}
}

func (e *ScriptStarted) EventName() string {
	return "ScriptStarted"
}

// ScriptStepCompleted is published after each script step.
type ScriptStepCompleted struct {
	baseSessionEvent
	ScriptName string
	StepIndex  int
	Op         string
	Error      error // nil if the step succeeded
}

func NewScriptStepCompleted(sessionID, scriptName string, stepIndex int, op string, err error) *ScriptStepCompleted {
	return &ScriptStepCompleted{
		baseSessionEvent: baseSessionEvent{sessionID: sessionID},
		ScriptName:       scriptName,
		StepIndex:        stepIndex,
		Op:               op,
		Error:            err,
	}
}

func (e *ScriptStepCompleted) EventName() string {
	return "ScriptStepCompleted"
}

// ScriptFinished is published when an automation script finishes.
type ScriptFinished struct {
	baseSessionEvent
	ScriptName string
	Error      error // nil if the script completed
}

func NewScriptFinished(sessionID, scriptName string, err error) *ScriptFinished {
	return &ScriptFinished{
		baseSessionEvent: baseSessionEvent{sessionID: sessionID},
		ScriptName:       scriptName,
		Error:            err,
	}
}

func (e *ScriptFinished) EventName() string {
	return "ScriptFinished"
}
