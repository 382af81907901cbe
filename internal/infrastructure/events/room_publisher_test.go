package events

import (
	"testing"

	"github.com/juanmoore-creator/elimpostor/internal/domain"
	"github.com/juanmoore-creator/elimpostor/internal/infrastructure/contracts"
	"github.com/stretchr/testify/assert"
)

func TestDeletionRoutingKey(t *testing.T) {
	assert.Equal(t, contracts.EventRoomReclaimed, deletionRoutingKey(domain.DeleteReasonReclaimed))
	assert.Equal(t, contracts.EventRoomDeleted, deletionRoutingKey(domain.DeleteReasonEmpty))
	assert.Equal(t, contracts.EventRoomDeleted, deletionRoutingKey(""))
}
