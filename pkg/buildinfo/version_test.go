package buildinfo

import (
	"strings"
	"testing"
)

func TestTemplate(t *testing.T) {
	old := Version
	defer func() { Version = old }()
	Version = "v9.9.9"

	tmpl := Template()
	if !strings.HasPrefix(tmpl, "{{.Name}} version: v9.9.9\n") {
		t.Errorf("Template() = %q", tmpl)
	}
	if !strings.Contains(String(), "commit: none") {
		t.Errorf("String() = %q", String())
	}
}
