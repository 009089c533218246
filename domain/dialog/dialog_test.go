package dialog

import (
	"errors"
	"testing"
)

func TestKind_String(t *testing.T) {
	tests := []struct {
		kind     Kind
		expected string
	}{
		{KindAlert, "alert"},
		{KindConfirm, "confirm"},
		{KindPrompt, "prompt"},
		{Kind(99), "unknown(99)"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.kind.String(); got != tt.expected {
				t.Errorf("Kind.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestInterceptor_ConfirmConsumedOnce(t *testing.T) {
	i := NewInterceptor()

	release, err := i.ExpectConfirm(true, nil)
	if err != nil {
		t.Fatalf("ExpectConfirm() error = %v", err)
	}
	defer release()

	ans, err := i.Resolve(KindConfirm, "delete?", "")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !ans.Accept {
		t.Error("Resolve() Accept = false, want true")
	}

	// Second confirm fires with the expectation already consumed.
	_, err = i.Resolve(KindConfirm, "again?", "")
	var unexpected *UnexpectedDialogError
	if !errors.As(err, &unexpected) {
		t.Fatalf("second Resolve() error = %v, want UnexpectedDialogError", err)
	}
	if unexpected.Kind != KindConfirm {
		t.Errorf("error kind = %v, want confirm", unexpected.Kind)
	}
}

func TestInterceptor_ConfirmCallback(t *testing.T) {
	i := NewInterceptor()

	calls := 0
	release, err := i.ExpectConfirm(false, func(message string) bool {
		calls++
		return message == "proceed?"
	})
	if err != nil {
		t.Fatalf("ExpectConfirm() error = %v", err)
	}
	defer release()

	ans, err := i.Resolve(KindConfirm, "proceed?", "")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !ans.Accept {
		t.Error("callback answer not used")
	}
	if calls != 1 {
		t.Errorf("callback fired %d times, want 1", calls)
	}
}

func TestInterceptor_PromptFixedValue(t *testing.T) {
	i := NewInterceptor()

	release, err := i.ExpectPrompt("ghost", nil)
	if err != nil {
		t.Fatalf("ExpectPrompt() error = %v", err)
	}
	defer release()

	ans, err := i.Resolve(KindPrompt, "your name?", "anonymous")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !ans.Accept || ans.Text != "ghost" {
		t.Errorf("Resolve() = %+v, want accepted with text %q", ans, "ghost")
	}
}

func TestInterceptor_PromptCallbackSeesDefault(t *testing.T) {
	i := NewInterceptor()

	release, err := i.ExpectPrompt("", func(message, defaultValue string) string {
		return defaultValue + "!"
	})
	if err != nil {
		t.Fatalf("ExpectPrompt() error = %v", err)
	}
	defer release()

	ans, err := i.Resolve(KindPrompt, "your name?", "anon")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if ans.Text != "anon!" {
		t.Errorf("Text = %q, want %q", ans.Text, "anon!")
	}
}

func TestInterceptor_UnexpectedPromptRecordsError(t *testing.T) {
	i := NewInterceptor()

	ans, err := i.Resolve(KindPrompt, "surprise", "")
	if err == nil {
		t.Fatal("Resolve() with no expectation expected error")
	}
	if ans.Accept {
		t.Error("unexpected prompt must be dismissed")
	}

	// The error is recorded for the session to surface later.
	if taken := i.TakeError(); taken == nil {
		t.Error("TakeError() = nil, want recorded error")
	}
	if taken := i.TakeError(); taken != nil {
		t.Errorf("second TakeError() = %v, want nil", taken)
	}
}

func TestInterceptor_DoubleArmFails(t *testing.T) {
	i := NewInterceptor()

	release, err := i.ExpectConfirm(true, nil)
	if err != nil {
		t.Fatalf("ExpectConfirm() error = %v", err)
	}
	defer release()

	_, err = i.ExpectConfirm(false, nil)
	var armed *AlreadyArmedError
	if !errors.As(err, &armed) {
		t.Fatalf("second ExpectConfirm() error = %v, want AlreadyArmedError", err)
	}
}

func TestInterceptor_ReleaseClearsUnconsumed(t *testing.T) {
	i := NewInterceptor()

	release, err := i.ExpectConfirm(true, nil)
	if err != nil {
		t.Fatalf("ExpectConfirm() error = %v", err)
	}
	release()

	// The expectation was released before any dialog fired; arming again
	// must succeed.
	release2, err := i.ExpectConfirm(false, nil)
	if err != nil {
		t.Fatalf("ExpectConfirm() after release error = %v", err)
	}
	release2()
}

func TestInterceptor_ReleaseAfterConsumeIsNoop(t *testing.T) {
	i := NewInterceptor()

	release, _ := i.ExpectConfirm(true, nil)
	if _, err := i.Resolve(KindConfirm, "ok?", ""); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	// Release after consumption must not clobber a newly armed expectation.
	release2, err := i.ExpectConfirm(false, nil)
	if err != nil {
		t.Fatalf("re-arm error = %v", err)
	}
	release()

	ans, err := i.Resolve(KindConfirm, "ok?", "")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if ans.Accept {
		t.Error("stale release cleared the new expectation")
	}
	release2()
}

func TestInterceptor_AlertSingleShot(t *testing.T) {
	i := NewInterceptor()

	ans, err := i.Resolve(KindAlert, "hi", "")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !ans.Accept {
		t.Error("alerts must always be accepted")
	}

	if !i.AlertPending() {
		t.Error("AlertPending() = false after alert")
	}
	msg, ok := i.TakeAlert()
	if !ok || msg != "hi" {
		t.Errorf("TakeAlert() = %q, %v, want %q, true", msg, ok, "hi")
	}
	if _, ok := i.TakeAlert(); ok {
		t.Error("second TakeAlert() must report no alert")
	}
}
