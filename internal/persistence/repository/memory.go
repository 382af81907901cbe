package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/juanmoore-creator/elimpostor/internal/domain"
)

type memorySubscriber struct {
	code  string // empty = public feed subscriber
	limit int
	ch    chan domain.RoomChange
	feed  chan domain.FeedChange
}

// memoryRoomStore keeps every room in a map guarded by one RWMutex. It is
// the store backend for single-node deployments and for tests; semantics
// (create-rejects-duplicate, versioned CAS, watch with initial snapshot)
// mirror the mongo store exactly.
type memoryRoomStore struct {
	mu        sync.RWMutex
	rooms     map[string]*domain.Room
	subs      map[int]*memorySubscriber
	nextSubID int
}

func NewMemoryRoomStore() domain.RoomStore {
	return &memoryRoomStore{
		rooms: make(map[string]*domain.Room),
		subs:  make(map[int]*memorySubscriber),
	}
}

func cloneRoom(r *domain.Room) *domain.Room {
	cp := *r
	cp.Players = make([]domain.Player, len(r.Players))
	copy(cp.Players, r.Players)
	return &cp
}

func (s *memoryRoomStore) Create(ctx context.Context, room *domain.Room) error {
	if room == nil || room.Code == "" {
		return domain.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.rooms[room.Code]; exists {
		return domain.ErrRoomExists
	}

	s.rooms[room.Code] = cloneRoom(room)
	s.notifyLocked(room.Code)
	return nil
}

func (s *memoryRoomStore) Get(ctx context.Context, code string) (*domain.Room, error) {
	if code == "" {
		return nil, domain.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	room, exists := s.rooms[code]
	if !exists {
		return nil, domain.ErrRoomNotFound
	}
	return cloneRoom(room), nil
}

func (s *memoryRoomStore) Update(ctx context.Context, room *domain.Room, expectedVersion int64) error {
	if room == nil || room.Code == "" {
		return domain.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored, exists := s.rooms[room.Code]
	if !exists {
		return domain.ErrRoomNotFound
	}
	if stored.Version != expectedVersion {
		return domain.ErrVersionConflict
	}

	next := cloneRoom(room)
	next.Version = expectedVersion + 1
	s.rooms[room.Code] = next
	room.Version = next.Version

	s.notifyLocked(room.Code)
	return nil
}

func (s *memoryRoomStore) Delete(ctx context.Context, code string, expectedVersion int64) error {
	if code == "" {
		return domain.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored, exists := s.rooms[code]
	if !exists {
		return domain.ErrRoomNotFound
	}
	if stored.Version != expectedVersion {
		return domain.ErrVersionConflict
	}

	delete(s.rooms, code)
	s.notifyLocked(code)
	return nil
}

func (s *memoryRoomStore) ListPublic(ctx context.Context) ([]*domain.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listPublicLocked(false, 0), nil
}

func (s *memoryRoomStore) ListPublicWaiting(ctx context.Context, limit int) ([]*domain.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listPublicLocked(true, limit), nil
}

func (s *memoryRoomStore) listPublicLocked(waitingOnly bool, limit int) []*domain.Room {
	rooms := make([]*domain.Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		if !room.IsPublic {
			continue
		}
		if waitingOnly && room.Status != domain.StatusWaiting {
			continue
		}
		rooms = append(rooms, cloneRoom(room))
	}

	sort.SliceStable(rooms, func(i, j int) bool {
		return rooms[i].CreatedAt.After(rooms[j].CreatedAt)
	})

	if limit > 0 && len(rooms) > limit {
		rooms = rooms[:limit]
	}
	return rooms
}

func (s *memoryRoomStore) Watch(ctx context.Context, code string) (*domain.RoomWatch, error) {
	if code == "" {
		return nil, domain.ErrInvalidInput
	}

	s.mu.Lock()
	room, exists := s.rooms[code]
	if !exists {
		s.mu.Unlock()
		return nil, domain.ErrRoomNotFound
	}

	sub := &memorySubscriber{code: code, ch: make(chan domain.RoomChange, 16)}
	id := s.nextSubID
	s.nextSubID++
	s.subs[id] = sub

	// Initial snapshot while still holding the lock, so no change between
	// subscribe and first push can be missed.
	sub.ch <- domain.RoomChange{Room: cloneRoom(room)}
	s.mu.Unlock()

	var once sync.Once
	closeFn := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			close(sub.ch)
			s.mu.Unlock()
		})
	}

	go func() {
		<-ctx.Done()
		closeFn()
	}()

	return domain.NewRoomWatch(sub.ch, closeFn), nil
}

func (s *memoryRoomStore) WatchPublicWaiting(ctx context.Context, limit int) (*domain.FeedWatch, error) {
	s.mu.Lock()
	sub := &memorySubscriber{feed: make(chan domain.FeedChange, 8), limit: limit}
	id := s.nextSubID
	s.nextSubID++
	s.subs[id] = sub

	sub.feed <- domain.FeedChange{Rooms: s.listPublicLocked(true, limit)}
	s.mu.Unlock()

	var once sync.Once
	closeFn := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			close(sub.feed)
			s.mu.Unlock()
		})
	}

	go func() {
		<-ctx.Done()
		closeFn()
	}()

	return domain.NewFeedWatch(sub.feed, closeFn), nil
}

// notifyLocked fans the change out to every subscriber. Slow subscribers
// lose intermediate snapshots rather than blocking the writer.
func (s *memoryRoomStore) notifyLocked(code string) {
	room, exists := s.rooms[code]

	for _, sub := range s.subs {
		if sub.ch != nil && sub.code == code {
			change := domain.RoomChange{Deleted: !exists}
			if exists {
				change.Room = cloneRoom(room)
			}
			select {
			case sub.ch <- change:
			default:
			}
		}

		if sub.feed != nil {
			select {
			case sub.feed <- domain.FeedChange{Rooms: s.listPublicLocked(true, sub.limit)}:
			default:
			}
		}
	}
}
