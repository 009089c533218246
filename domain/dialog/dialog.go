// Package dialog models the interception of JavaScript dialogs (alert,
// confirm, prompt). Each session owns one Interceptor; expectations are
// armed per dialog kind, consumed by the first matching dialog, and cleared
// on release. A dialog firing with no armed expectation is a protocol error.
package dialog

import (
	"fmt"
	"sync"
)

// Kind identifies a JavaScript dialog type.
type Kind int

const (
	KindAlert Kind = iota
	KindConfirm
	KindPrompt
)

// String returns the string representation of the dialog kind.
func (k Kind) String() string {
	switch k {
	case KindAlert:
		return "alert"
	case KindConfirm:
		return "confirm"
	case KindPrompt:
		return "prompt"
	default:
		return fmt.Sprintf("unknown(%d)", k)
	}
}

// ConfirmFunc computes a confirm answer from the dialog message.
type ConfirmFunc func(message string) bool

// PromptFunc computes a prompt answer from the dialog message and default value.
type PromptFunc func(message, defaultValue string) string

// Answer is the normalized reply produced for the engine: whether to accept
// the dialog and, for prompts, the text to enter.
type Answer struct {
	Accept bool
	Text   string
}

// UnexpectedDialogError reports a confirm or prompt that fired with no armed
// expectation.
type UnexpectedDialogError struct {
	Kind    Kind
	Message string
}

func (e *UnexpectedDialogError) Error() string {
	return fmt.Sprintf("no %s expectation armed for dialog %q", e.Kind, e.Message)
}

// AlreadyArmedError reports an attempt to arm an expectation while one of the
// same kind is still outstanding.
type AlreadyArmedError struct {
	Kind Kind
}

func (e *AlreadyArmedError) Error() string {
	return fmt.Sprintf("a %s expectation is already armed", e.Kind)
}

type confirmExpectation struct {
	answer bool
	fn     ConfirmFunc
}

type promptExpectation struct {
	value string
	fn    PromptFunc
}

// Interceptor holds the pending dialog expectations for one session.
// All state is session-scoped; nothing here is process-wide.
type Interceptor struct {
	mu      sync.Mutex
	confirm *confirmExpectation
	prompt  *promptExpectation
	alert   *string
	pending []error
}

// NewInterceptor creates an Interceptor with no expectations armed.
func NewInterceptor() *Interceptor {
	return &Interceptor{}
}

// ExpectConfirm arms a single-use confirm expectation. The returned release
// function clears the expectation if it has not been consumed; call it when
// the expecting scope ends.
func (i *Interceptor) ExpectConfirm(answer bool, fn ConfirmFunc) (func(), error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.confirm != nil {
		return nil, &AlreadyArmedError{Kind: KindConfirm}
	}

	exp := &confirmExpectation{answer: answer, fn: fn}
	i.confirm = exp

	return func() {
		i.mu.Lock()
		if i.confirm == exp {
			i.confirm = nil
		}
		i.mu.Unlock()
	}, nil
}

// ExpectPrompt arms a single-use prompt expectation. The returned release
// function clears the expectation if it has not been consumed.
func (i *Interceptor) ExpectPrompt(value string, fn PromptFunc) (func(), error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.prompt != nil {
		return nil, &AlreadyArmedError{Kind: KindPrompt}
	}

	exp := &promptExpectation{value: value, fn: fn}
	i.prompt = exp

	return func() {
		i.mu.Lock()
		if i.prompt == exp {
			i.prompt = nil
		}
		i.mu.Unlock()
	}, nil
}

// Resolve produces the engine-visible answer for a dialog. Alerts are always
// accepted and their message recorded for WaitForAlert. Confirms and prompts
// consume the armed expectation; with none armed the dialog is dismissed and
// the protocol error is recorded for the session to surface.
func (i *Interceptor) Resolve(kind Kind, message, defaultValue string) (Answer, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	switch kind {
	case KindAlert:
		msg := message
		i.alert = &msg
		return Answer{Accept: true}, nil

	case KindConfirm:
		exp := i.confirm
		if exp == nil {
			err := &UnexpectedDialogError{Kind: KindConfirm, Message: message}
			i.pending = append(i.pending, err)
			return Answer{Accept: false}, err
		}
		i.confirm = nil
		answer := exp.answer
		if exp.fn != nil {
			answer = exp.fn(message)
		}
		return Answer{Accept: answer}, nil

	case KindPrompt:
		exp := i.prompt
		if exp == nil {
			err := &UnexpectedDialogError{Kind: KindPrompt, Message: message}
			i.pending = append(i.pending, err)
			return Answer{Accept: false}, err
		}
		i.prompt = nil
		value := exp.value
		if exp.fn != nil {
			value = exp.fn(message, defaultValue)
		}
		return Answer{Accept: true, Text: value}, nil

	default:
		return Answer{Accept: false}, fmt.Errorf("unsupported dialog kind %s", kind)
	}
}

// TakeAlert returns the recorded alert message, if any, and clears it.
func (i *Interceptor) TakeAlert() (string, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.alert == nil {
		return "", false
	}
	msg := *i.alert
	i.alert = nil
	return msg, true
}

// AlertPending reports whether an alert message is waiting to be taken.
func (i *Interceptor) AlertPending() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.alert != nil
}

// TakeError returns the oldest recorded protocol error, if any, and removes it.
func (i *Interceptor) TakeError() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if len(i.pending) == 0 {
		return nil
	}
	err := i.pending[0]
	i.pending = i.pending[1:]
	return err
}
