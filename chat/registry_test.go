package chat

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"testing"
)

var errBrokenPipe = errors.New("broken pipe")

// Used for testing
type MockMember struct {
	id string

	mu     sync.Mutex
	lines  []string
	fail   bool
	closed bool
}

func NewMockMember(id string) *MockMember {
	return &MockMember{id: id}
}

func (m *MockMember) ID() string {
	return m.id
}

func (m *MockMember) Send(line string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail || m.closed {
		return errBrokenPipe
	}
	m.lines = append(m.lines, line)
	return nil
}

func (m *MockMember) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

func (m *MockMember) Lines() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.lines...)
}

func (m *MockMember) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func memberIDs(members []Member) []string {
	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.ID())
	}
	sort.Strings(ids)
	return ids
}

func TestRegistryJoin(t *testing.T) {
	r := NewRegistry()
	foo, bar := NewMockMember("foo"), NewMockMember("bar")

	res, err := r.Join("lobby", foo, "Foo")
	if err != nil {
		t.Fatal(err)
	}
	if res.Delivered != 0 {
		t.Errorf("joiner was announced to: %d", res.Delivered)
	}

	res, err = r.Join("lobby", bar, "Bar")
	if err != nil {
		t.Fatal(err)
	}
	if res.Delivered != 1 {
		t.Errorf("Got: %d delivered; Expected: 1", res.Delivered)
	}

	if actual, expected := foo.Lines(), []string{"Bar joined the room."}; !reflect.DeepEqual(actual, expected) {
		t.Errorf("Got: %q; Expected: %q", actual, expected)
	}
	if len(bar.Lines()) != 0 {
		t.Errorf("joiner received its own announcement: %q", bar.Lines())
	}

	if actual, expected := memberIDs(r.MembersOf("lobby")), []string{"bar", "foo"}; !reflect.DeepEqual(actual, expected) {
		t.Errorf("Got: %q; Expected: %q", actual, expected)
	}

	if _, err := r.Join("", foo, "Foo"); err != ErrInvalidRoom {
		t.Errorf("Got: %v; Expected: %v", err, ErrInvalidRoom)
	}
}

func TestRegistryJoinIdempotent(t *testing.T) {
	r := NewRegistry()
	foo := NewMockMember("foo")

	r.Join("lobby", foo, "Foo")
	r.Join("lobby", foo, "Foo")

	if n := len(r.MembersOf("lobby")); n != 1 {
		t.Errorf("Got: %d members; Expected: 1", n)
	}
}

func TestRegistryJoinSwitchesRoom(t *testing.T) {
	r := NewRegistry()
	foo, bar := NewMockMember("foo"), NewMockMember("bar")

	r.Join("lobby", foo, "Foo")
	r.Join("lobby", bar, "Bar")
	r.Join("other", foo, "Foo")

	if actual, expected := memberIDs(r.MembersOf("lobby")), []string{"bar"}; !reflect.DeepEqual(actual, expected) {
		t.Errorf("Got: %q; Expected: %q", actual, expected)
	}
	if name, _ := r.RoomOf(foo); name != "other" {
		t.Errorf("Got: %q; Expected: %q", name, "other")
	}

	r.Join("other", bar, "Bar")
	if actual, expected := r.Rooms(), []string{"other"}; !reflect.DeepEqual(actual, expected) {
		t.Errorf("empty room retained: Got: %q; Expected: %q", actual, expected)
	}
}

func TestRegistryLeave(t *testing.T) {
	r := NewRegistry()
	foo, bar := NewMockMember("foo"), NewMockMember("bar")
	r.Join("lobby", foo, "Foo")
	r.Join("lobby", bar, "Bar")

	if name := r.Leave(foo); name != "lobby" {
		t.Errorf("Got: %q; Expected: %q", name, "lobby")
	}
	if name := r.Leave(foo); name != "" {
		t.Errorf("second leave returned %q", name)
	}
	if r.Len() != 1 {
		t.Errorf("Got: %d rooms; Expected: 1", r.Len())
	}

	r.Leave(bar)
	if r.Len() != 0 || r.MembersOf("lobby") != nil {
		t.Errorf("empty room retained: %q", r.Rooms())
	}
	if _, ok := r.RoomOf(bar); ok {
		t.Errorf("left member still has a room")
	}

	// No leave announcement.
	if actual, expected := foo.Lines(), []string{"Bar joined the room."}; !reflect.DeepEqual(actual, expected) {
		t.Errorf("Got: %q; Expected: %q", actual, expected)
	}
}

func TestBroadcastExcludesSender(t *testing.T) {
	r := NewRegistry()
	members := []*MockMember{NewMockMember("a"), NewMockMember("b"), NewMockMember("c")}
	for _, m := range members {
		r.Join("lobby", m, m.ID())
	}
	outsider := NewMockMember("x")
	r.Join("other", outsider, "x")

	res := r.Broadcast("lobby", "a: hi", members[0])
	if res.Delivered != 2 || len(res.Dropped) != 0 {
		t.Errorf("unexpected result: %+v", res)
	}

	count := func(m *MockMember) int {
		n := 0
		for _, line := range m.Lines() {
			if line == "a: hi" {
				n++
			}
		}
		return n
	}
	if n := count(members[0]); n != 0 {
		t.Errorf("sender received %d copies", n)
	}
	for _, m := range members[1:] {
		if n := count(m); n != 1 {
			t.Errorf("%s received %d copies; Expected: 1", m.ID(), n)
		}
	}
	if n := count(outsider); n != 0 {
		t.Errorf("message leaked across rooms")
	}
}

func TestBroadcastUnknownRoom(t *testing.T) {
	r := NewRegistry()
	res := r.Broadcast("nowhere", "hello", nil)
	if res.Delivered != 0 || len(res.Dropped) != 0 {
		t.Errorf("unexpected result: %+v", res)
	}
	if r.Len() != 0 {
		t.Errorf("broadcast created a room")
	}
}

func TestBroadcastWriteFailure(t *testing.T) {
	r := NewRegistry()
	sender := NewMockMember("sender")
	broken := NewMockMember("broken")
	var healthy []*MockMember
	r.Join("lobby", sender, "sender")
	r.Join("lobby", broken, "broken")
	for i := 0; i < 5; i++ {
		m := NewMockMember(fmt.Sprintf("healthy%d", i))
		healthy = append(healthy, m)
		r.Join("lobby", m, m.ID())
	}

	broken.mu.Lock()
	broken.fail = true
	broken.mu.Unlock()

	res := r.Broadcast("lobby", "sender: hi", sender)
	if res.Delivered != len(healthy) {
		t.Errorf("Got: %d delivered; Expected: %d", res.Delivered, len(healthy))
	}
	if len(res.Dropped) != 1 || res.Dropped[0].ID() != "broken" {
		t.Errorf("unexpected drops: %q", memberIDs(res.Dropped))
	}
	for _, m := range healthy {
		lines := m.Lines()
		if len(lines) == 0 || lines[len(lines)-1] != "sender: hi" {
			t.Errorf("%s missed the broadcast: %q", m.ID(), lines)
		}
	}

	if _, ok := r.RoomOf(broken); ok {
		t.Error("failed member still in room")
	}
	if !broken.Closed() {
		t.Error("failed member was not closed")
	}
}

func TestBroadcastLastMemberFails(t *testing.T) {
	r := NewRegistry()
	sender, broken := NewMockMember("sender"), NewMockMember("broken")
	r.Join("lobby", broken, "broken")
	broken.Close()

	r.Broadcast("lobby", "sender: hi", sender)
	if r.Len() != 0 {
		t.Errorf("room with only a dead member retained: %q", r.Rooms())
	}
}

func TestRegistryClose(t *testing.T) {
	r := NewRegistry()
	foo, bar := NewMockMember("foo"), NewMockMember("bar")
	r.Join("a", foo, "foo")
	r.Join("b", bar, "bar")

	r.Close()
	if r.Len() != 0 {
		t.Errorf("rooms retained after close")
	}
	if !foo.Closed() || !bar.Closed() {
		t.Errorf("members not closed")
	}
}

func TestRegistryConcurrent(t *testing.T) {
	r := NewRegistry()
	rooms := []string{"a", "b", "c"}

	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		m := NewMockMember(fmt.Sprintf("m%d", i))
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				room := rooms[(i+j)%len(rooms)]
				r.Join(room, m, m.ID())
				r.Broadcast(room, "ping", m)
				r.MembersOf(room)
			}
			r.Leave(m)
		}(i)
	}
	wg.Wait()

	if r.Len() != 0 {
		t.Errorf("rooms retained after every member left: %q", r.Rooms())
	}
}
