package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/shroominic/cashu-mint-status-board/internal/board"
)

// loadRankings fetches the current ordering and board configuration.
func loadRankings(b *board.Board) tea.Cmd {
	return func() tea.Msg {
		return rankingsLoadedMsg{
			rows:    b.Rankings(),
			weights: b.Weights(),
			state:   b.SortState(),
		}
	}
}

// applyEvent delivers one board event and reports its outcome.
func applyEvent(b *board.Board, ev board.Event) tea.Cmd {
	return func() tea.Msg {
		return eventAppliedMsg{err: b.Apply(context.Background(), ev)}
	}
}

// refreshTick schedules the next view reload. The probe scheduler keeps the
// records fresh in the background; the TUI only re-reads the ordering.
func refreshTick() tea.Cmd {
	return tea.Tick(2*time.Second, func(time.Time) tea.Msg {
		return refreshTickMsg{}
	})
}
