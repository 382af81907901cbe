// Package session derives what one connected player should currently see
// from the stream of room changes: a phase, the latest snapshot and the
// player's own role flags. It never writes rooms.
package session

import (
	"context"

	"github.com/juanmoore-creator/elimpostor/internal/domain"
	"go.uber.org/zap"
)

type Phase string

const (
	PhaseNone    Phase = "NONE"
	PhaseLobby   Phase = "LOBBY"
	PhasePlaying Phase = "PLAYING"
)

const (
	msgRoomClosed = "room closed"
	msgSyncError  = "sync error"
)

// View is one derived frame pushed to the presentation layer.
type View struct {
	Phase      Phase        `json:"phase"`
	Room       *domain.Room `json:"room,omitempty"`
	IsHost     bool         `json:"isHost"`
	IsImpostor bool         `json:"isImpostor"`
	Error      string       `json:"error,omitempty"`
}

// Session follows exactly one room on behalf of one player. Create a new
// Session per room; Close tears the watch down before any re-subscribe so
// stale callbacks never leak.
type Session struct {
	uid    string
	code   string
	views  chan View
	cancel context.CancelFunc
	logger *zap.SugaredLogger
}

// Attach subscribes to the room and starts deriving views. The initial
// snapshot arrives as the first view. Attaching to a code that does not
// exist fails with ErrRoomNotFound instead of yielding a closed-room frame.
func Attach(ctx context.Context, store domain.RoomStore, code, uid string, logger *zap.SugaredLogger) (*Session, error) {
	watchCtx, cancel := context.WithCancel(ctx)

	watch, err := store.Watch(watchCtx, code)
	if err != nil {
		cancel()
		return nil, err
	}

	s := &Session{
		uid:    uid,
		code:   code,
		views:  make(chan View, 16),
		cancel: cancel,
		logger: logger,
	}

	go s.run(watch)
	return s, nil
}

// Views delivers derived frames until the session ends. The channel closes
// after a room-closed frame or when the session is closed.
func (s *Session) Views() <-chan View {
	return s.views
}

func (s *Session) Close() {
	s.cancel()
}

func (s *Session) run(watch *domain.RoomWatch) {
	defer close(s.views)
	defer watch.Close()

	last := View{Phase: PhaseNone}

	for change := range watch.Events {
		switch {
		case change.Err != nil:
			// The watch self-heals; report and keep the last-known-good
			// phase rather than kicking the player out.
			s.logger.Warnw("room sync error", "code", s.code, "error", change.Err)
			v := last
			v.Error = msgSyncError
			s.send(v)

		case change.Deleted:
			s.send(View{Phase: PhaseNone, Error: msgRoomClosed})
			return

		default:
			last = s.derive(change.Room)
			s.send(last)
		}
	}
}

func (s *Session) derive(room *domain.Room) View {
	phase := PhaseLobby
	if room.Status == domain.StatusPlaying {
		phase = PhasePlaying
	}

	return View{
		Phase:      phase,
		Room:       room,
		IsHost:     room.IsHost(s.uid),
		IsImpostor: room.Status == domain.StatusPlaying && room.ImpostorID == s.uid,
	}
}

// send drops the oldest undelivered frame for a slow consumer; only the
// most recent view matters.
func (s *Session) send(v View) {
	for {
		select {
		case s.views <- v:
			return
		default:
			select {
			case <-s.views:
			default:
			}
		}
	}
}
