package buildinfo

import (
	"strings"
	"testing"
)

func TestStrings(t *testing.T) {
	old := Version
	Version = "v9.9.9"
	defer func() { Version = old }()

	if got := UserAgent(); got != "skyline/v9.9.9" {
		t.Errorf("UserAgent() = %q", got)
	}
	if got := Template(); !strings.HasPrefix(got, "{{.Name}} v9.9.9 (") {
		t.Errorf("Template() = %q", got)
	}
	if got := String(); !strings.Contains(got, "version: v9.9.9\n") || !strings.Contains(got, "go: go") {
		t.Errorf("String() = %q", got)
	}
}
