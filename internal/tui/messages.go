package tui

import (
	"github.com/shroominic/cashu-mint-status-board/internal/rank"
	"github.com/shroominic/cashu-mint-status-board/internal/storage/models"
)

// Data loading messages.

type rankingsLoadedMsg struct {
	rows    []*models.MintStatus
	weights rank.Weights
	state   rank.SortState
}

// Board event outcome.

type eventAppliedMsg struct {
	err error
}

// Periodic reload.

type refreshTickMsg struct{}
