package markdown

import (
	"strings"
	"testing"
)

func TestParseWithoutFrontmatter(t *testing.T) {
	t.Parallel()
	note, err := Parse("just text\n")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(note.Meta) != 0 || note.Body != "just text\n" {
		t.Fatalf("unexpected note %+v", note)
	}
}

func TestParseRejectsUnclosedFrontmatter(t *testing.T) {
	t.Parallel()
	if _, err := Parse("---\nkey: value\nbody"); err == nil {
		t.Fatalf("expected error for unclosed frontmatter")
	}
}

func TestRenderParseRoundTrip(t *testing.T) {
	t.Parallel()
	note := Note{Meta: map[string]any{"activity_type": "walk", "step_count": 42}, Body: "# Walk\n"}
	out, err := note.Render()
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.HasPrefix(out, "---\n") || !strings.Contains(out, "activity_type: walk") {
		t.Fatalf("unexpected render %q", out)
	}
	back, err := Parse(out)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if back.Meta["step_count"] != 42 || back.Body != "\n# Walk\n" {
		t.Fatalf("unexpected parsed note %+v", back)
	}
}

func TestSetBlockAppendsThenReplaces(t *testing.T) {
	t.Parallel()
	note := Note{Body: "intro"}
	note.SetBlock("insights", "- one")
	if note.Body != "intro\n\n<!-- stridekit:insights:start -->\n- one\n<!-- stridekit:insights:end -->\n" {
		t.Fatalf("unexpected body after append %q", note.Body)
	}

	note.Body += "outro\n"
	note.SetBlock("insights", "- two")
	got, ok := note.Block("insights")
	if !ok || got != "- two" {
		t.Fatalf("block = %q, %v", got, ok)
	}
	if !strings.HasPrefix(note.Body, "intro\n") || !strings.HasSuffix(note.Body, "outro\n") || strings.Contains(note.Body, "- one") {
		t.Fatalf("replace touched text outside the block: %q", note.Body)
	}
}

func TestSetBlockOnEmptyBody(t *testing.T) {
	t.Parallel()
	note := Note{}
	note.SetBlock("insights", "x")
	if _, ok := note.Block("insights"); !ok {
		t.Fatalf("expected block in %q", note.Body)
	}
	if _, ok := note.Block("other"); ok {
		t.Fatalf("unexpected block")
	}
}
