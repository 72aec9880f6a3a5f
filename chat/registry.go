package chat

import (
	"errors"
	"sort"
	"sync"

	"github.com/shazow/relay-chat/chat/message"
	"github.com/shazow/relay-chat/set"
	"github.com/sourcegraph/conc/iter"
)

// The error returned when a member is asked to join with an empty room name.
var ErrInvalidRoom = errors.New("invalid room name")

// BroadcastResult summarizes one fan-out.
type BroadcastResult struct {
	Delivered int
	// Dropped members failed their write and were removed from the registry.
	Dropped []Member
}

// Registry maps room names to their members. A room exists only while it has
// at least one member, and a member is in at most one room at a time.
type Registry struct {
	mu     sync.RWMutex
	rooms  map[string]*Room
	roomOf map[string]string // member id -> room name
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		rooms:  map[string]*Room{},
		roomOf: map[string]string{},
	}
}

// Join places m in the named room, creating it if needed, and announces the
// join to the other members. A member already in another room leaves it
// first, without an announcement.
func (r *Registry) Join(name string, m Member, username string) (BroadcastResult, error) {
	if name == "" {
		return BroadcastResult{}, ErrInvalidRoom
	}

	r.mu.Lock()
	if prev, ok := r.roomOf[m.ID()]; ok && prev != name {
		r.remove(prev, m.ID())
	}
	room, ok := r.rooms[name]
	if !ok {
		room = newRoom(name)
		r.rooms[name] = room
		logger.Printf("Room created: %s", name)
	}
	room.Members.Add(set.Itemize(m.ID(), m))
	r.roomOf[m.ID()] = name
	r.mu.Unlock()

	logger.Printf("[%s] Joined %s as %s", m.ID(), name, username)
	return r.Broadcast(name, message.NewJoinMsg(name, username).Render(), m), nil
}

// Leave removes m from its room, deleting the room if it is now empty. It
// returns the name of the room left, or "" if m was in none. Safe to call
// repeatedly.
func (r *Registry) Leave(m Member) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	name, ok := r.roomOf[m.ID()]
	if !ok {
		return ""
	}
	r.remove(name, m.ID())
	logger.Printf("[%s] Left %s", m.ID(), name)
	return name
}

// remove must be called with the write lock held.
func (r *Registry) remove(name, id string) {
	delete(r.roomOf, id)
	room, ok := r.rooms[name]
	if !ok {
		return
	}
	room.Members.Remove(id)
	if room.Members.Len() == 0 {
		delete(r.rooms, name)
		logger.Printf("Room closed: %s", name)
	}
}

// MembersOf returns a point-in-time copy of the room's members, or nil if the
// room does not exist.
func (r *Registry) MembersOf(name string) []Member {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[name]
	if !ok {
		return nil
	}
	return room.snapshot()
}

// RoomOf returns the room m is currently in.
func (r *Registry) RoomOf(m Member) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.roomOf[m.ID()]
	return name, ok
}

// Rooms lists the names of all non-empty rooms, sorted.
func (r *Registry) Rooms() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.rooms))
	for name := range r.rooms {
		names = append(names, name)
	}
	r.mu.RUnlock()

	sort.Strings(names)
	return names
}

// Len returns the number of rooms right now.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// Broadcast writes line to every member of the room except exclude. Writes
// happen concurrently and outside the registry lock; a member whose write
// fails is closed and removed without affecting delivery to the others.
func (r *Registry) Broadcast(name string, line string, exclude Member) BroadcastResult {
	members := r.MembersOf(name)

	var mu sync.Mutex
	res := BroadcastResult{}
	iter.ForEach(members, func(mp *Member) {
		m := *mp
		if exclude != nil && m.ID() == exclude.ID() {
			return
		}
		err := m.Send(line)

		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			logger.Printf("[%s] Write failed, dropping: %s", m.ID(), err)
			res.Dropped = append(res.Dropped, m)
			return
		}
		res.Delivered++
	})

	for _, m := range res.Dropped {
		m.Close()
		r.Leave(m)
	}
	return res
}

// Close closes every member and empties the registry.
func (r *Registry) Close() {
	r.mu.Lock()
	var members []Member
	for _, room := range r.rooms {
		members = append(members, room.snapshot()...)
	}
	r.rooms = map[string]*Room{}
	r.roomOf = map[string]string{}
	r.mu.Unlock()

	for _, m := range members {
		m.Close()
	}
}
