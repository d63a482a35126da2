package platform

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		input    string
		expected Slug
		ok       bool
	}{
		{"windows", SlugWindows, true},
		{"Windows", SlugWindows, true},
		{" win ", SlugWindows, true},
		{"macOS", SlugMac, true},
		{"osx", SlugMac, true},
		{"linux", SlugLinux, true},
		{"SteamOS", SlugLinux, true},
		{"amiga", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := Parse(tt.input)
			if ok != tt.ok {
				t.Fatalf("Parse(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			}
			if got != tt.expected {
				t.Errorf("Parse(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSlugName(t *testing.T) {
	if got := SlugMac.Name(); got != "macOS" {
		t.Errorf("SlugMac.Name() = %q, want %q", got, "macOS")
	}
	if got := Slug("beos").Name(); got != "beos" {
		t.Errorf("unknown Name() = %q, want %q", got, "beos")
	}
	if Slug("beos").IsValid() {
		t.Error("beos should not be a valid slug")
	}
}

func TestAllSlugs(t *testing.T) {
	slugs := AllSlugs()
	want := []Slug{SlugLinux, SlugMac, SlugWindows}
	if len(slugs) != len(want) {
		t.Fatalf("AllSlugs() returned %d slugs, want %d", len(slugs), len(want))
	}
	for i := range want {
		if slugs[i] != want[i] {
			t.Errorf("AllSlugs()[%d] = %q, want %q", i, slugs[i], want[i])
		}
	}
}
