package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const guideYAML = `
personas:
  - key: guide
    name: Guide
    history_key: GUIDE_HISTORY
    backend:
      url: http://localhost:9000/chat
    lines:
      greeting: Hello.
      farewell: Bye.
      menu_prompt: Yes?
      placeholder: "..."
      soft_failure: Hmm.
      hard_failure: Oops.
      unconfigured: Offline.
    choices:
      - text: Talk
        value: talk
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestValidateFile(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		wantErr string
	}{
		{"valid", "personas.yaml", guideYAML, ""},
		{"yml extension", "personas.yml", guideYAML, ""},
		{"wrong extension", "personas.json", guideYAML, "extension"},
		{"bad key", "personas.yaml", strings.Replace(guideYAML, "key: guide", "key: Guide_One", 1), "kebab-case"},
		{"bad history key", "personas.yaml", strings.Replace(guideYAML, "GUIDE_HISTORY", "guideHistory", 1), "UPPER_SNAKE_CASE"},
		{"no backend", "personas.yaml", strings.Replace(guideYAML, "url: http://localhost:9000/chat", "url: \"\"", 1), "no backend"},
		{"structural error", "personas.yaml", strings.Replace(guideYAML, "      greeting: Hello.\n", "", 1), "greeting"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.file, tt.content)
			err := (&CatalogValidator{}).validateFile(path)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("validateFile() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("validateFile() error = %v; want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateCatalog_SharedHistory(t *testing.T) {
	second := strings.Replace(guideYAML, "personas:\n", "", 1)
	second = strings.Replace(second, "key: guide", "key: guide-two", 1)
	path := writeFile(t, "personas.yaml", guideYAML+second)

	err := (&CatalogValidator{}).validateFile(path)
	if err == nil || !strings.Contains(err.Error(), "share history_key") {
		t.Errorf("validateFile() error = %v; want shared history error", err)
	}
}
