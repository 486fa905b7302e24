package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestRunUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no arguments", nil},
		{"command without input", []string{"ask"}},
		{"unknown command", []string{"delete", "everything"}},
		{"unknown flag", []string{"-verbose", "search", "fraud"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			if code := run(tt.args, &stdout, &stderr); code != exitUsage {
				t.Errorf("exit code = %d, want %d", code, exitUsage)
			}
			if stdout.Len() != 0 {
				t.Errorf("stdout = %q, want empty", stdout.String())
			}
			if !strings.Contains(stderr.String(), "Usage:") {
				t.Errorf("stderr missing usage:\n%s", stderr.String())
			}
		})
	}
}

func TestRunConfigError(t *testing.T) {
	t.Setenv("DOCUMENT_SOURCE", "ftp")
	t.Setenv("LEGALEAGLE_CONFIG", "")

	var stdout, stderr bytes.Buffer
	if code := run([]string{"search", "fraud"}, &stdout, &stderr); code != exitError {
		t.Errorf("exit code = %d, want %d", code, exitError)
	}
	if !strings.Contains(stderr.String(), "unknown document source") {
		t.Errorf("stderr = %q", stderr.String())
	}
}
