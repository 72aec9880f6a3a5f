package chat

// Member is a participant that can be placed in a room.
type Member interface {
	// ID is unique per member for the lifetime of the process.
	ID() string

	// Send delivers a single rendered line. An error is terminal for the
	// member.
	Send(line string) error

	Close() error
}
