package session

import (
	"wraith-go/domain/dialog"
)

// ExpectConfirm arms a single-use confirm expectation. The next confirm
// dialog is answered with the fixed answer, or with fn when non-nil. The
// returned release function clears an unconsumed expectation; call it when
// the expecting scope ends.
func (s *Session) ExpectConfirm(answer bool, fn dialog.ConfirmFunc) (func(), error) {
	return s.interceptor.ExpectConfirm(answer, fn)
}

// ExpectPrompt arms a single-use prompt expectation. The next prompt dialog
// is accepted with the fixed value, or with the value computed by fn when
// non-nil. The returned release function clears an unconsumed expectation.
func (s *Session) ExpectPrompt(value string, fn dialog.PromptFunc) (func(), error) {
	return s.interceptor.ExpectPrompt(value, fn)
}

// AlertPending reports whether an alert message is waiting for WaitForAlert.
func (s *Session) AlertPending() bool {
	return s.interceptor.AlertPending()
}
