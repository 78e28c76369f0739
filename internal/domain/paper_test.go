package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaperStatus(t *testing.T) {
	tests := []struct {
		status   PaperStatus
		valid    bool
		terminal bool
	}{
		{StatusPending, true, false},
		{StatusApproved, true, true},
		{StatusRejected, true, true},
		{PaperStatus("archived"), false, false},
		{PaperStatus(""), false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.status.IsValid())
			assert.Equal(t, tt.terminal, tt.status.IsTerminal())
		})
	}
}

func TestPaperIsVisibleTo(t *testing.T) {
	approved := Paper{Status: StatusApproved}
	pending := Paper{Status: StatusPending}
	rejected := Paper{Status: StatusRejected}

	assert.True(t, approved.IsVisibleTo(false))
	assert.True(t, approved.IsVisibleTo(true))
	assert.False(t, pending.IsVisibleTo(false))
	assert.True(t, pending.IsVisibleTo(true))
	assert.False(t, rejected.IsVisibleTo(false))
	assert.True(t, rejected.IsVisibleTo(true))
}
