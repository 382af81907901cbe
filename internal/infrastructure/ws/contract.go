package ws

type WSMessage struct {
	Type string `json:"type"`
	Room string `json:"room,omitempty"`
	Data any    `json:"data,omitempty"`
}

type ClosedPayload struct {
	Reason string `json:"reason"`
}

type SyncErrorPayload struct {
	Message string `json:"message"`
}

func NewRoomUpdated(code string, view any) *WSMessage {
	return &WSMessage{
		Type: RoomUpdatedEvent,
		Room: code,
		Data: view,
	}
}

func NewRoomClosed(code, reason string) *WSMessage {
	return &WSMessage{
		Type: RoomClosedEvent,
		Room: code,
		Data: ClosedPayload{Reason: reason},
	}
}

func NewSyncError(code, message string) *WSMessage {
	return &WSMessage{
		Type: SyncErrorEvent,
		Room: code,
		Data: SyncErrorPayload{Message: message},
	}
}

func NewFeedUpdated(rooms any) *WSMessage {
	return &WSMessage{
		Type: FeedUpdatedEvent,
		Data: rooms,
	}
}
