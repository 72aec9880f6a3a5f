package message

import (
	"fmt"
)

// Wire actions.
const (
	ActionJoin    = "join"
	ActionMessage = "message"
)

// Message is a decoded client request. Implementations are immutable.
type Message interface {
	Action() string
	Room() string
	Username() string
	// Render returns the single line delivered to the other room members.
	Render() string
}

// JoinMsg asks the server to place the sender in a room.
type JoinMsg struct {
	room     string
	username string
}

func NewJoinMsg(room, username string) *JoinMsg {
	return &JoinMsg{
		room:     room,
		username: username,
	}
}

func (m *JoinMsg) Action() string {
	return ActionJoin
}

func (m *JoinMsg) Room() string {
	return m.room
}

func (m *JoinMsg) Username() string {
	return m.username
}

func (m *JoinMsg) Render() string {
	return SanitizeLine(fmt.Sprintf("%s joined the room.", m.username))
}

func (m *JoinMsg) String() string {
	return fmt.Sprintf("join(%s, %s)", m.room, m.username)
}

// ChatMsg is a line of text sent to a room.
type ChatMsg struct {
	room     string
	username string
	text     string
}

func NewChatMsg(room, username, text string) *ChatMsg {
	return &ChatMsg{
		room:     room,
		username: username,
		text:     text,
	}
}

func (m *ChatMsg) Action() string {
	return ActionMessage
}

func (m *ChatMsg) Room() string {
	return m.room
}

func (m *ChatMsg) Username() string {
	return m.username
}

// Text is the message body as sent by the client.
func (m *ChatMsg) Text() string {
	return m.text
}

func (m *ChatMsg) Render() string {
	return SanitizeLine(fmt.Sprintf("%s: %s", m.username, m.text))
}

func (m *ChatMsg) String() string {
	return fmt.Sprintf("message(%s, %s, %q)", m.room, m.username, m.text)
}
