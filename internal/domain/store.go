package domain

import "context"

// RoomChange is one push from a room watch. Deleted means the document is
// gone; Err flags a transient sync failure (the watch itself stays alive
// and heals on the next successful push).
type RoomChange struct {
	Room    *Room
	Deleted bool
	Err     error
}

// FeedChange is one push from the public-rooms watch: the full snapshot of
// joinable public rooms, newest first.
type FeedChange struct {
	Rooms []*Room
	Err   error
}

// RoomStore is the only persistence authority for rooms. Create rejects a
// duplicate code rather than overwriting, so an active room can never be
// clobbered by a code collision; callers regenerate and retry.
//
// Update is a compare-and-swap: it writes the whole document only when the
// stored version still equals expectedVersion, and bumps the version by
// one. Leave/host-migration and role assignment depend on this to stay
// single-write atomic.
//
// Delete is conditional the same way: it removes the document only when
// the stored version still equals expectedVersion, so a delete-on-empty
// can never destroy a join that committed after the deleter's read.
type RoomStore interface {
	Create(ctx context.Context, room *Room) error
	Get(ctx context.Context, code string) (*Room, error)
	Update(ctx context.Context, room *Room, expectedVersion int64) error
	Delete(ctx context.Context, code string, expectedVersion int64) error

	// ListPublic returns every public room; the reclaimer scans it.
	ListPublic(ctx context.Context) ([]*Room, error)

	// ListPublicWaiting returns public rooms still open for joins,
	// capped and ordered by creation time descending.
	ListPublicWaiting(ctx context.Context, limit int) ([]*Room, error)

	// Watch streams changes for one room until the context is done or
	// Close is called on the returned handle. The initial snapshot is
	// delivered first; an unknown code fails with ErrRoomNotFound.
	Watch(ctx context.Context, code string) (*RoomWatch, error)

	// WatchPublicWaiting streams discovery-feed snapshots.
	WatchPublicWaiting(ctx context.Context, limit int) (*FeedWatch, error)
}

type RoomWatch struct {
	Events <-chan RoomChange
	close  func()
}

func NewRoomWatch(events <-chan RoomChange, close func()) *RoomWatch {
	return &RoomWatch{Events: events, close: close}
}

// Close unsubscribes. Must be called before re-subscribing to another room
// so stale callbacks never leak.
func (w *RoomWatch) Close() {
	if w.close != nil {
		w.close()
	}
}

type FeedWatch struct {
	Events <-chan FeedChange
	close  func()
}

func NewFeedWatch(events <-chan FeedChange, close func()) *FeedWatch {
	return &FeedWatch{Events: events, close: close}
}

func (w *FeedWatch) Close() {
	if w.close != nil {
		w.close()
	}
}
