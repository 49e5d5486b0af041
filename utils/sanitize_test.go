package utils

import "testing"

func TestSanitizeTitle(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Tom & Jerry", "Tom & Jerry"},
		{"a < b", "a < b"},
		{"  <b>bold</b> title ", "bold title"},
		{"<script>alert(1)</script>", ""},
	}
	for _, tt := range tests {
		if got := SanitizeTitle(tt.in); got != tt.want {
			t.Errorf("SanitizeTitle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeContentDropsScripts(t *testing.T) {
	if got := SanitizeContent("<p>hi</p><script>x</script>"); got != "<p>hi</p>" {
		t.Errorf("got %q", got)
	}
}
