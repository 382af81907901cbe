package messaging

import "github.com/juanmoore-creator/elimpostor/internal/domain"

const (
	RoomsQueue      = "rooms"
	DeadLetterQueue = "dead_letter_queue"
)

type RoomEventData struct {
	Room    domain.Room `json:"room"`
	UID     string      `json:"uid,omitempty"`
	Reason  string      `json:"reason,omitempty"`
	WasHost bool        `json:"wasHost,omitempty"`
}
