package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	fence       = "---\n"
	closingLine = "\n---\n"
	blockPrefix = "<!-- stridekit:"
)

// Note is a markdown document with a YAML frontmatter header.
type Note struct {
	Meta map[string]any
	Body string
}

// Parse splits content into frontmatter and body. Content without a leading
// fence is all body.
func Parse(content string) (Note, error) {
	if !strings.HasPrefix(content, fence) {
		return Note{Meta: map[string]any{}, Body: content}, nil
	}
	rest := content[len(fence):]
	idx := strings.Index(rest, closingLine)
	if idx < 0 {
		return Note{}, fmt.Errorf("frontmatter is not closed")
	}
	meta := map[string]any{}
	if err := yaml.Unmarshal([]byte(rest[:idx]), &meta); err != nil {
		return Note{}, fmt.Errorf("decode frontmatter: %w", err)
	}
	return Note{Meta: meta, Body: rest[idx+len(closingLine):]}, nil
}

func (n Note) Render() (string, error) {
	meta := n.Meta
	if meta == nil {
		meta = map[string]any{}
	}
	raw, err := yaml.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("encode frontmatter: %w", err)
	}
	var buf bytes.Buffer
	buf.WriteString(fence)
	buf.Write(raw)
	buf.WriteString(fence)
	if !strings.HasPrefix(n.Body, "\n") {
		buf.WriteByte('\n')
	}
	buf.WriteString(n.Body)
	return buf.String(), nil
}

// SetBlock replaces the generated block called name, appending it to the
// body when the note has none yet. Text outside the markers is left alone.
func (n *Note) SetBlock(name, generated string) {
	start, end := blockMarkers(name)
	block := start + "\n" + generated + "\n" + end

	i := strings.Index(n.Body, start)
	j := strings.Index(n.Body, end)
	if i >= 0 && j > i {
		n.Body = n.Body[:i] + block + n.Body[j+len(end):]
		return
	}
	switch {
	case strings.TrimSpace(n.Body) == "":
		n.Body = block + "\n"
	case strings.HasSuffix(n.Body, "\n"):
		n.Body += "\n" + block + "\n"
	default:
		n.Body += "\n\n" + block + "\n"
	}
}

// Block returns the content of the generated block called name.
func (n Note) Block(name string) (string, bool) {
	start, end := blockMarkers(name)
	i := strings.Index(n.Body, start)
	j := strings.Index(n.Body, end)
	if i < 0 || j < i {
		return "", false
	}
	return strings.Trim(n.Body[i+len(start):j], "\n"), true
}

func blockMarkers(name string) (string, string) {
	return blockPrefix + name + ":start -->", blockPrefix + name + ":end -->"
}
