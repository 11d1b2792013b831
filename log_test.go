package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestLoggerMask(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, ErrorMask|WarnMask)
	l.Debugf("hidden %d", 1)
	l.Infof("hidden %d", 2)
	l.Warnf("shown %d", 3)
	l.Errorf("shown %d", 4)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("masked messages printed: %q", out)
	}
	if !strings.Contains(out, "shown 3\n") || !strings.Contains(out, "shown 4\n") {
		t.Errorf("missing messages: %q", out)
	}

	if prev := l.SetLevel(Nothing); prev != ErrorMask|WarnMask {
		t.Errorf("SetLevel returned %x", prev)
	}
	buf.Reset()
	l.Errorf("quiet")
	if buf.Len() != 0 {
		t.Errorf("Nothing mask printed %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name    string
		want    MaskLevel
		wantErr bool
	}{
		{"none", Nothing, false},
		{"error", ErrorMask, false},
		{"WARN", ErrorMask | WarnMask, false},
		{"debug", ErrorMask | WarnMask | InfoMask | DebugMask, false},
		{"loud", Nothing, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLevel(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v", tt.name, err)
			}
			if err != nil && !errors.Is(err, ErrBadConfig) {
				t.Fatalf("error %v does not wrap ErrBadConfig", err)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %x, want %x", tt.name, got, tt.want)
			}
		})
	}
}
