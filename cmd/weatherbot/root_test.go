package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestVersionCommand(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	if err := root.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := out.String(); !strings.HasPrefix(got, "weatherbot dev (local)") {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestCheckRejectsExtraArgs(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"check", "Kyiv", "Lviv"})
	if err := root.Execute(); err == nil {
		t.Fatal("expected args error")
	}
}
