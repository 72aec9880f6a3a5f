package chat

import (
	"github.com/shazow/relay-chat/set"
)

// Room is a named broadcast domain.
type Room struct {
	name    string
	Members *set.Set
}

func newRoom(name string) *Room {
	return &Room{
		name:    name,
		Members: set.New(),
	}
}

// Name of the room.
func (r *Room) Name() string {
	return r.name
}

// snapshot copies the current members.
func (r *Room) snapshot() []Member {
	items := r.Members.Items()
	members := make([]Member, 0, len(items))
	for _, item := range items {
		members = append(members, item.Value().(Member))
	}
	return members
}
