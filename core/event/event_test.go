package event

import (
	"errors"
	"testing"
)

func TestEvent_Names(t *testing.T) {
	tests := []struct {
		event    Event
		expected string
	}{
		{NewSessionStarted("s1"), "SessionStarted"},
		{NewSessionClosed("s1", nil), "SessionClosed"},
		{NewPageLoadStarted("s1", "http://example.com"), "PageLoadStarted"},
		{NewPageLoadFinished("s1", "http://example.com", true), "PageLoadFinished"},
		{NewDialogOpened("s1", "confirm", "are you sure?"), "DialogOpened"},
		{NewResourceCaptured("s1", "http://example.com/a.js", 200), "ResourceCaptured"},
		{NewConsoleMessage("s1", "app.js", 12, "hello"), "ConsoleMessage"},
		{NewScriptStarted("s1", "snapshot"), "ScriptStarted"},
		{NewScriptStepCompleted("s1", "snapshot", 0, "open", nil), "ScriptStepCompleted"},
		{NewScriptFinished("s1", "snapshot", errors.New("test")), "ScriptFinished"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.event.EventName(); got != tt.expected {
				t.Errorf("EventName() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestSessionEvent_SessionID(t *testing.T) {
	tests := []struct {
		name     string
		event    SessionEvent
		expected string
	}{
		{"SessionStarted", NewSessionStarted("session-123"), "session-123"},
		{"SessionClosed", NewSessionClosed("session-456", nil), "session-456"},
		{"PageLoadStarted", NewPageLoadStarted("session-789", "http://example.com"), "session-789"},
		{"PageLoadFinished", NewPageLoadFinished("session-abc", "http://example.com", false), "session-abc"},
		{"DialogOpened", NewDialogOpened("session-def", "alert", "hi"), "session-def"},
		{"ResourceCaptured", NewResourceCaptured("session-ghi", "http://example.com", 404), "session-ghi"},
		{"ConsoleMessage", NewConsoleMessage("session-jkl", "", 0, "msg"), "session-jkl"},
		{"ScriptStarted", NewScriptStarted("session-mno", "test"), "session-mno"},
		{"ScriptStepCompleted", NewScriptStepCompleted("session-pqr", "test", 1, "click", nil), "session-pqr"},
		{"ScriptFinished", NewScriptFinished("session-stu", "test", nil), "session-stu"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.event.SessionID(); got != tt.expected {
				t.Errorf("SessionID() = %v, want %v", got, tt.expected)
			}
		})
	}
}
