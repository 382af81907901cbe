package audit

import (
	"time"

	"github.com/juanmoore-creator/elimpostor/internal/domain"
)

type auditEntry struct {
	EventType domain.RoomEventType `json:"eventType"`
	Timestamp time.Time            `json:"timestamp"`
	Metadata  map[string]any       `json:"metadata,omitempty"`
}

type auditTrailResponse struct {
	RoomCode string       `json:"roomCode"`
	Events   []auditEntry `json:"events"`
}

func newAuditEntries(logs []domain.RoomAuditLog) []auditEntry {
	entries := make([]auditEntry, 0, len(logs))
	for _, l := range logs {
		entries = append(entries, auditEntry{
			EventType: l.EventType,
			Timestamp: l.Timestamp,
			Metadata:  l.Metadata,
		})
	}
	return entries
}
