package uploads

import (
	"strings"
	"testing"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple", "notes.pdf", "notes.pdf"},
		{"spaces replaced", "my homework.pdf", "my_homework.pdf"},
		{"path stripped", "../../etc/passwd", "passwd"},
		{"windows path stripped", `essay.docx`, "essay.docx"},
		{"unicode replaced", "résumé.pdf", "r__sum__.pdf"},
		{"allowed punctuation kept", "week-3_draft.v2.md", "week-3_draft.v2.md"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeFilename(tt.input)
			if got != tt.want {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeFilename_Truncation(t *testing.T) {
	long := strings.Repeat("a", 150) + ".pdf"
	got := SanitizeFilename(long)

	if len(got) > 100 {
		t.Errorf("length = %d, want <= 100", len(got))
	}
	if !strings.HasSuffix(got, ".pdf") {
		t.Errorf("extension not preserved: %q", got)
	}
}
