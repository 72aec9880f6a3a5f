package chat

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

func TestSetLogger(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(&buf)
	defer SetLogger(io.Discard)

	r := NewRegistry()
	foo := NewMockMember("foo")
	r.Join("lobby", foo, "Foo")
	r.Leave(foo)

	out := buf.String()
	for _, expected := range []string{"[chat] ", "Room created: lobby", "[foo] Left lobby", "Room closed: lobby"} {
		if !strings.Contains(out, expected) {
			t.Errorf("log output missing %q:\n%s", expected, out)
		}
	}
}
