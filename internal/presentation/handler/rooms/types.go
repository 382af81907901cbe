package rooms

import (
	"time"

	"github.com/juanmoore-creator/elimpostor/internal/domain"
	"github.com/juanmoore-creator/elimpostor/internal/session"
)

type createRoomRequest struct {
	Name     string `json:"name"`
	IsPublic bool   `json:"isPublic"`
}

type joinRoomRequest struct {
	Name string `json:"name"`
}

type playerView struct {
	UID    string `json:"uid"`
	Name   string `json:"name"`
	IsHost bool   `json:"isHost"`
}

// roomView is the shared shape of a room. Word and impostor identity are
// per-player secrets and never appear here.
type roomView struct {
	Code      string        `json:"code"`
	Status    domain.Status `json:"status"`
	Players   []playerView  `json:"players"`
	IsPublic  bool          `json:"isPublic"`
	CreatedAt time.Time     `json:"createdAt"`
}

// sessionView is one player's frame: the shared room plus their own role
// and, unless they are the impostor, the secret word.
type sessionView struct {
	Phase      session.Phase `json:"phase"`
	Room       *roomView     `json:"room,omitempty"`
	IsHost     bool          `json:"isHost"`
	IsImpostor bool          `json:"isImpostor"`
	Category   string        `json:"category,omitempty"`
	Word       string        `json:"word,omitempty"`
	Error      string        `json:"error,omitempty"`
}

type categoriesResponse struct {
	Categories []string `json:"categories"`
}

type feedEntry struct {
	Code        string    `json:"code"`
	HostName    string    `json:"hostName"`
	PlayerCount int       `json:"playerCount"`
	MaxPlayers  int       `json:"maxPlayers"`
	CreatedAt   time.Time `json:"createdAt"`
}

func newRoomView(room *domain.Room) *roomView {
	players := make([]playerView, 0, len(room.Players))
	for _, p := range room.Players {
		players = append(players, playerView{
			UID:    p.UID,
			Name:   p.Name,
			IsHost: p.IsHost,
		})
	}

	return &roomView{
		Code:      room.Code,
		Status:    room.Status,
		Players:   players,
		IsPublic:  room.IsPublic,
		CreatedAt: room.CreatedAt,
	}
}

func newSessionView(v session.View) *sessionView {
	out := &sessionView{
		Phase:      v.Phase,
		IsHost:     v.IsHost,
		IsImpostor: v.IsImpostor,
		Error:      v.Error,
	}

	if v.Room != nil {
		out.Room = newRoomView(v.Room)

		if v.Room.Status == domain.StatusPlaying {
			out.Category = v.Room.Category
			if !v.IsImpostor {
				out.Word = v.Room.Word
			}
		}
	}

	return out
}

func newFeedEntries(roomsList []*domain.Room) []feedEntry {
	entries := make([]feedEntry, 0, len(roomsList))
	for _, room := range roomsList {
		hostName := ""
		if host := room.FindPlayer(room.HostID); host != nil {
			hostName = host.Name
		}

		entries = append(entries, feedEntry{
			Code:        room.Code,
			HostName:    hostName,
			PlayerCount: len(room.Players),
			MaxPlayers:  domain.MaxPlayers,
			CreatedAt:   room.CreatedAt,
		})
	}
	return entries
}
