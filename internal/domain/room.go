package domain

import (
	"crypto/rand"
	"errors"
	"math/big"
	mrand "math/rand"
	"strings"
	"time"
)

const (
	CodeLength = 4
	MaxPlayers = 10
	MinPlayers = 3

	MaxNameLength = 12

	// StaleAfter is how long a public room may live before the
	// reclaimer is allowed to delete it.
	StaleAfter = 2 * time.Hour

	codeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

var (
	charsetLen = big.NewInt(int64(len(codeChars)))

	ErrRoomNotFound    = errors.New("room not found")
	ErrRoomExists      = errors.New("room already exists")
	ErrRoomFull        = errors.New("room is full")
	ErrGameStarted     = errors.New("game already started")
	ErrGameNotStarted  = errors.New("game not started")
	ErrNotEnoughPlayer = errors.New("not enough players")
	ErrNotHost         = errors.New("caller is not the host")
	ErrPlayerNotFound  = errors.New("player not found")
	ErrVersionConflict = errors.New("room was modified concurrently")
	ErrInvalidInput    = errors.New("invalid input")
)

type Status string

const (
	StatusWaiting Status = "WAITING"
	StatusPlaying Status = "PLAYING"
)

type Player struct {
	UID    string `bson:"uid" json:"uid"`
	Name   string `bson:"name" json:"name"`
	IsHost bool   `bson:"is_host" json:"isHost"`
}

// Room is one lobby document, keyed by its 4-character code. The Version
// field exists purely for conditional writes; every store update must
// increment it.
type Room struct {
	Code       string    `bson:"_id" json:"code"`
	HostID     string    `bson:"host_id" json:"hostId"`
	Status     Status    `bson:"status" json:"status"`
	Players    []Player  `bson:"players" json:"players"`
	Category   string    `bson:"category" json:"category"`
	Word       string    `bson:"word" json:"word"`
	ImpostorID string    `bson:"impostor_id" json:"impostorId"`
	CreatedAt  time.Time `bson:"created_at" json:"createdAt"`
	IsPublic   bool      `bson:"is_public" json:"isPublic"`
	Version    int64     `bson:"version" json:"-"`
}

// GenerateCode draws a 4-character code from an alphabet that omits the
// visually ambiguous I, O, 0 and 1. Uniqueness is the caller's problem.
func GenerateCode() (string, error) {
	var sb strings.Builder
	sb.Grow(CodeLength)

	for i := 0; i < CodeLength; i++ {
		n, err := rand.Int(rand.Reader, charsetLen)
		if err != nil {
			return "", err
		}
		sb.WriteByte(codeChars[n.Int64()])
	}

	return sb.String(), nil
}

// NormalizeCode uppercases a room code for lookup. Returns ErrInvalidInput
// when the code is not exactly 4 characters.
func NormalizeCode(raw string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(raw))
	if len(code) != CodeLength {
		return "", ErrInvalidInput
	}
	return code, nil
}

func NewRoom(code, hostID, hostName string, isPublic bool) *Room {
	return &Room{
		Code:   code,
		HostID: hostID,
		Status: StatusWaiting,
		Players: []Player{
			{UID: hostID, Name: hostName, IsHost: true},
		},
		CreatedAt: time.Now().UTC(),
		IsPublic:  isPublic,
	}
}

func (r *Room) IsHost(uid string) bool {
	return r.HostID != "" && r.HostID == uid
}

func (r *Room) FindPlayer(uid string) *Player {
	for i := range r.Players {
		if r.Players[i].UID == uid {
			return &r.Players[i]
		}
	}
	return nil
}

// AddPlayer appends a non-host player. A repeated join by the same uid is
// a no-op so a reconnecting client never duplicates its entry.
func (r *Room) AddPlayer(uid, name string) error {
	if r.Status == StatusPlaying {
		return ErrGameStarted
	}
	if r.FindPlayer(uid) != nil {
		return nil
	}
	if len(r.Players) >= MaxPlayers {
		return ErrRoomFull
	}
	r.Players = append(r.Players, Player{UID: uid, Name: name, IsHost: false})
	return nil
}

// RemovePlayer drops the matching player, keeping join order for everyone
// else. If the host left and players remain, the earliest remaining joiner
// is promoted. Returns whether the departing player was host.
func (r *Room) RemovePlayer(uid string) (wasHost bool, err error) {
	idx := -1
	for i := range r.Players {
		if r.Players[i].UID == uid {
			idx = i
			break
		}
	}
	if idx == -1 {
		return false, ErrPlayerNotFound
	}

	wasHost = r.IsHost(uid)
	r.Players = append(r.Players[:idx], r.Players[idx+1:]...)

	if wasHost {
		if len(r.Players) > 0 {
			r.Players[0].IsHost = true
			r.HostID = r.Players[0].UID
		} else {
			r.HostID = ""
		}
	}
	return wasHost, nil
}

func (r *Room) Empty() bool {
	return len(r.Players) == 0
}

// StartRound assigns the secret word and the impostor in memory. The caller
// must persist the result as a single write so no observer ever sees a
// PLAYING room with an empty word.
func (r *Room) StartRound() error {
	if r.Status == StatusPlaying {
		return ErrGameStarted
	}
	if len(r.Players) < MinPlayers {
		return ErrNotEnoughPlayer
	}

	category, word := RandomWord()
	impostor := r.Players[mrand.Intn(len(r.Players))]

	r.Status = StatusPlaying
	r.Category = category
	r.Word = word
	r.ImpostorID = impostor.UID
	return nil
}

// ResetRound returns a PLAYING room to the lobby. Players are untouched.
func (r *Room) ResetRound() error {
	if r.Status != StatusPlaying {
		return ErrGameNotStarted
	}
	r.Status = StatusWaiting
	r.Category = ""
	r.Word = ""
	r.ImpostorID = ""
	return nil
}

// Stale reports whether the room is eligible for reclamation: older than
// StaleAfter, or abandoned with zero players.
func (r *Room) Stale(now time.Time) bool {
	return now.Sub(r.CreatedAt) > StaleAfter || len(r.Players) == 0
}
