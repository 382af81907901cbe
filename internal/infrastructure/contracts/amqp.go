package contracts

// AmqpMessage is the message structure for AMQP.
type AmqpMessage struct {
	RoomCode string `json:"roomCode"`
	Data     []byte `json:"data"`
}

// Routing keys - using consistent event/command patterns
const (
	EventRoomCreated     = "room.created"
	EventRoomDeleted     = "room.deleted"
	EventRoomReclaimed   = "room.reclaimed"
	EventPlayerJoined    = "player.joined"
	EventPlayerLeft      = "player.left"
	EventHostTransferred = "host.transferred"
	EventGameStarted     = "game.started"
	EventGameReset       = "game.reset"
)
