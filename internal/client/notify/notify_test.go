package notify

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConsole_WritesOneLinePerMessage(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	c.Success("Item added successfully")
	c.Error("Failed to add item")

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Item added successfully")
	assert.Contains(t, lines[0], "✓")
	assert.Contains(t, lines[1], "Failed to add item")
	assert.Contains(t, lines[1], "✗")
}

func TestRecorder_KeepsOrder(t *testing.T) {
	var r Recorder
	assert.Equal(t, Message{}, r.Last())

	r.Success("a")
	r.Error("b")

	assert.Equal(t, []Message{{KindSuccess, "a"}, {KindError, "b"}}, r.Messages())
	assert.Equal(t, Message{KindError, "b"}, r.Last())

	r.Reset()
	assert.Empty(t, r.Messages())
}
