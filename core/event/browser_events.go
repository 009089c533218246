package event

// PageLoadStarted is published when the main frame begins a load cycle.
type PageLoadStarted struct {
	baseSessionEvent
	URL string
}

func NewPageLoadStarted(sessionID, url string) *PageLoadStarted {
	return &PageLoadStarted{
		baseSessionEvent: baseSessionEvent{sessionID: sessionID},
		URL:              url,
	}
}

func (e *PageLoadStarted) EventName() string {
	return "PageLoadStarted"
}

// PageLoadFinished is published when the main frame finishes a load cycle.
type PageLoadFinished struct {
	baseSessionEvent
	URL string
	OK  bool
}

func NewPageLoadFinished(sessionID, url string, ok bool) *PageLoadFinished {
	return &PageLoadFinished{
		baseSessionEvent: baseSessionEvent{sessionID: sessionID},
		URL:              url,
		OK:               ok,
	}
}

func (e *PageLoadFinished) EventName() string {
	return "PageLoadFinished"
}

// DialogOpened is published when the page raises a JavaScript dialog.
type DialogOpened struct {
	baseSessionEvent
	Kind    string // "alert", "confirm" or "prompt"
	Message string
}

func NewDialogOpened(sessionID, kind, message string) *DialogOpened {
	return &DialogOpened{
		baseSessionEvent: baseSessionEvent{sessionID: sessionID},
		Kind:             kind,
		Message:          message,
	}
}

func (e *DialogOpened) EventName() string {
	return "DialogOpened"
}

// ResourceCaptured is published when a network exchange completes and is
// appended to the session's resource buffer.
type ResourceCaptured struct {
	baseSessionEvent
	URL    string
	Status int64
}

func NewResourceCaptured(sessionID, url string, status int64) *ResourceCaptured {
	return &ResourceCaptured{
		baseSessionEvent: baseSessionEvent{sessionID: sessionID},
		URL:              url,
		Status:           status,
	}
}

func (e *ResourceCaptured) EventName() string {
	return "ResourceCaptured"
}

// ConsoleMessage is published when the page writes to the JavaScript console.
type ConsoleMessage struct {
	baseSessionEvent
	Source string
	Line   int64
	Text   string
}

func NewConsoleMessage(sessionID, source string, line int64, text string) *ConsoleMessage {
	return &ConsoleMessage{
		baseSessionEvent: baseSessionEvent{sessionID: sessionID},
		Source:           source,
		Line:             line,
		Text:             text,
	}
}

func (e *ConsoleMessage) EventName() string {
	return "ConsoleMessage"
}
