package main

import (
	"testing"
)

func TestGormLogger(t *testing.T) {
	for _, level := range []string{"info", "warn", "error", "silent", "", "garbage"} {
		if iface := gormLogger(level); iface == nil {
			t.Fatalf("gormLogger(%q) returned nil", level)
		}
	}
}
