package ws

const (
	RoomUpdatedEvent = "room.updated"
	RoomClosedEvent  = "room.closed"
	SyncErrorEvent   = "sync.error"

	FeedUpdatedEvent = "feed.updated"
)
