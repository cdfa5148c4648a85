package export

import (
	"path/filepath"
	"testing"
)

func TestSanitizeName(t *testing.T) {
	cases := []struct {
		in     string
		maxLen int
		want   string
	}{
		{"My Cut (v2)", 0, "My Cut (v2)"},
		{"slash/back\\slash", 0, "slash_back_slash"},
		{"control\x00chars\x1f", 0, "controlchars"},
		{"  padded  ", 0, "padded"},
		{"very long name here", 9, "very long"},
	}
	for _, tc := range cases {
		if got := SanitizeName(tc.in, tc.maxLen); got != tc.want {
			t.Errorf("SanitizeName(%q, %d) = %q, want %q", tc.in, tc.maxLen, got, tc.want)
		}
	}
}

func TestValidateOutputDir(t *testing.T) {
	tmpDir := t.TempDir()

	if err := ValidateOutputDir(tmpDir); err != nil {
		t.Errorf("valid dir rejected: %v", err)
	}
	if err := ValidateOutputDir(""); err == nil {
		t.Error("empty dir accepted")
	}
	if err := ValidateOutputDir(filepath.Join(tmpDir, "..", "escape")); err == nil {
		t.Error("path traversal accepted")
	}
	if err := ValidateOutputDir(filepath.Join(tmpDir, "missing")); err == nil {
		t.Error("nonexistent dir accepted")
	}
}
