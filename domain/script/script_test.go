package script

import (
	"testing"
	"testing/fstest"
	"time"
)

func TestScript_Validate(t *testing.T) {
	tests := []struct {
		name    string
		script  *Script
		wantErr bool
	}{
		{
			name: "valid",
			script: &Script{
				Name: "snapshot",
				Steps: []Step{
					{Op: OpOpen, URL: "http://example.com"},
					{Op: OpWaitSelector, Selector: "#main"},
					{Op: OpCapture, Path: "out.png"},
				},
			},
			wantErr: false,
		},
		{
			name:    "no name",
			script:  &Script{Steps: []Step{{Op: OpOpen, URL: "http://example.com"}}},
			wantErr: true,
		},
		{
			name:    "no steps",
			script:  &Script{Name: "empty"},
			wantErr: true,
		},
		{
			name:    "open without url",
			script:  &Script{Name: "bad", Steps: []Step{{Op: OpOpen}}},
			wantErr: true,
		},
		{
			name:    "click without selector",
			script:  &Script{Name: "bad", Steps: []Step{{Op: OpClick}}},
			wantErr: true,
		},
		{
			name:    "fill without values",
			script:  &Script{Name: "bad", Steps: []Step{{Op: OpFill, Selector: "form"}}},
			wantErr: true,
		},
		{
			name:    "sleep without duration",
			script:  &Script{Name: "bad", Steps: []Step{{Op: OpSleep}}},
			wantErr: true,
		},
		{
			name:    "unknown op",
			script:  &Script{Name: "bad", Steps: []Step{{Op: "teleport"}}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.script.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

const loginScriptYAML = `
name: login
description: Log in and snapshot the dashboard
version: "1.0"
steps:
  - op: open
    url: http://example.com/login
  - op: fill
    selector: "#login-form"
    values:
      username: admin
      password: secret
  - op: click
    selector: "#submit"
    expectLoading: true
    timeout: 10s
  - op: wait_text
    text: Dashboard
  - op: capture
    path: dashboard.png
    continueOnFailure: true
`

func TestLoader_LoadFromFS(t *testing.T) {
	fsys := fstest.MapFS{
		"scripts/login.yaml": &fstest.MapFile{Data: []byte(loginScriptYAML)},
		"scripts/notes.txt":  &fstest.MapFile{Data: []byte("ignored")},
	}

	registry := NewRegistry()
	loader := NewLoader(registry)

	if err := loader.LoadFromFS(fsys); err != nil {
		t.Fatalf("LoadFromFS() error = %v", err)
	}

	if registry.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", registry.Count())
	}

	s := registry.Get("login")
	if s == nil {
		t.Fatal("Get(login) = nil")
	}
	if len(s.Steps) != 5 {
		t.Fatalf("len(Steps) = %d, want 5", len(s.Steps))
	}

	click := s.Steps[2]
	if click.Op != OpClick || click.Selector != "#submit" {
		t.Errorf("step 2 = %+v, want click on #submit", click)
	}
	if !click.ExpectLoading {
		t.Error("step 2 ExpectLoading = false, want true")
	}
	if click.Timeout != 10*time.Second {
		t.Errorf("step 2 Timeout = %v, want 10s", click.Timeout)
	}

	fill := s.Steps[1]
	if fill.Values["username"] != "admin" {
		t.Errorf("fill values = %v", fill.Values)
	}

	capture := s.Steps[4]
	if !capture.ContinueOnFailure {
		t.Error("capture step ContinueOnFailure = false, want true")
	}
}

func TestLoader_InvalidScriptFails(t *testing.T) {
	fsys := fstest.MapFS{
		"scripts/bad.yaml": &fstest.MapFile{Data: []byte("name: bad\nsteps:\n  - op: open\n")},
	}

	loader := NewLoader(NewRegistry())
	if err := loader.LoadFromFS(fsys); err == nil {
		t.Error("LoadFromFS() with invalid script expected error")
	}
}

func TestRegistry_List(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&Script{Name: "b"})
	registry.Register(&Script{Name: "a"})

	names := registry.List()
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("List() = %v, want [a b]", names)
	}
	if !registry.Exists("a") {
		t.Error("Exists(a) = false")
	}
	if registry.Exists("c") {
		t.Error("Exists(c) = true")
	}
}
