package slug

import "testing"

func TestMake(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"sit_to_stand":    "sit-to-stand",
		"  Walk  ":        "walk",
		"Hallway #2 (am)": "hallway-2-am",
		"***":             "measurement",
	}
	for in, want := range cases {
		if got := Make(in, "measurement"); got != want {
			t.Errorf("Make(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestShort(t *testing.T) {
	t.Parallel()
	if got := Short("ABCDEF12-3456-7890", 8, "x"); got != "abcdef12" {
		t.Fatalf("Short = %q", got)
	}
	if got := Short("abcdefg-12", 8, "x"); got != "abcdefg" {
		t.Fatalf("Short should drop a trailing dash, got %q", got)
	}
	if got := Short("", 8, "x"); got != "x" {
		t.Fatalf("Short on empty = %q", got)
	}
}
