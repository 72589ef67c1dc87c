package models

// Inbound event names (client -> server).
const (
	EventJoin           = "join"
	EventCodeChange     = "codeChange"
	EventTyping         = "typing"
	EventLanguageChange = "languageChange"
	EventLeaveRoom      = "leaveRoom"
)

// Outbound event names (server -> client).
const (
	EventUserJoined     = "userJoined"
	EventCodeUpdate     = "codeUpdate"
	EventUserTyping     = "userTyping"
	EventLanguageUpdate = "languageUpdate"
)

// WSFrame is the wire envelope: an event name plus its payload.
type WSFrame struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

type JoinPayload struct {
	RoomID   string `json:"roomId"`
	UserName string `json:"userName"`
}

// CodeChangePayload relays an edit to room peers. Code is a pointer so an
// empty-string edit (clearing the editor) is still relayed while a frame
// with no code field is dropped as malformed.
type CodeChangePayload struct {
	RoomID string  `json:"roomId"`
	Code   *string `json:"code"`
}

type TypingPayload struct {
	RoomID   string `json:"roomId"`
	UserName string `json:"userName"`
}

type LanguageChangePayload struct {
	RoomID   string `json:"roomId"`
	Language string `json:"language"`
}

// RoomMembers is the REST snapshot of a room's presence.
type RoomMembers struct {
	RoomID  string   `json:"roomId"`
	Members []string `json:"members"`
}
