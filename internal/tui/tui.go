package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/shroominic/cashu-mint-status-board/internal/board"
	"github.com/shroominic/cashu-mint-status-board/internal/rank"
	"github.com/shroominic/cashu-mint-status-board/internal/storage/models"
)

// sortColumns lists the header columns in display order; the cursor walks
// this list and enter "clicks" the selected header.
var sortColumns = []string{
	rank.ColName, rank.ColStatus, rank.ColUptime, rank.ColCurrency,
	rank.ColCapacity, rank.ColChannels, rank.ColLatency,
	rank.ColMints, rank.ColMelts, rank.ColErrors,
}

// Model is the root BubbleTea model rendering the ranked board.
type Model struct {
	board *board.Board

	table   table.Model
	rows    []*models.MintStatus
	weights rank.Weights
	state   rank.SortState

	colCursor int
	width     int
	height    int

	notification string
	notifErr     bool
}

// NewModel creates a new root Model.
func NewModel(b *board.Board) *Model {
	t := table.New(
		table.WithColumns(boardColumns(rank.DefaultSortState(), 0)),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(colorBorder).
		BorderBottom(true).
		Bold(true).
		Foreground(colorPurple)
	s.Selected = s.Selected.
		Foreground(colorFg).
		Background(lipgloss.AdaptiveColor{Light: "#E8E0F0", Dark: "#2A1A3E"}).
		Bold(true)
	t.SetStyles(s)

	return &Model{
		board:   b,
		table:   t,
		weights: b.Weights(),
		state:   b.SortState(),
	}
}

// NewProgram creates the BubbleTea program with the standard options.
func NewProgram(b *board.Board) *tea.Program {
	return tea.NewProgram(NewModel(b), tea.WithAltScreen())
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(loadRankings(m.board), refreshTick())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		th := m.height - 6
		if th < 3 {
			th = 3
		}
		m.table.SetHeight(th)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Weighted):
			// Nudging any weight re-enters weighted mode; re-setting the
			// current currency weight is the cheapest no-op edit.
			return m, applyEvent(m.board, board.WeightChanged{
				Criterion: rank.CriterionCurrency, Value: m.weights.Currency,
			})
		case key.Matches(msg, keys.Reset):
			return m, applyEvent(m.board, board.ResetRequested{})
		case key.Matches(msg, keys.Refresh):
			return m, loadRankings(m.board)
		case key.Matches(msg, keys.NextCol):
			m.colCursor = (m.colCursor + 1) % len(sortColumns)
			m.table.SetColumns(boardColumns(m.state, m.colCursor))
			return m, nil
		case key.Matches(msg, keys.PrevCol):
			m.colCursor = (m.colCursor + len(sortColumns) - 1) % len(sortColumns)
			m.table.SetColumns(boardColumns(m.state, m.colCursor))
			return m, nil
		case key.Matches(msg, keys.Sort):
			return m, applyEvent(m.board, board.ColumnClicked{Column: sortColumns[m.colCursor]})
		}

	case rankingsLoadedMsg:
		m.rows = msg.rows
		m.weights = msg.weights
		m.state = msg.state
		m.table.SetColumns(boardColumns(m.state, m.colCursor))
		m.table.SetRows(m.tableRows())
		return m, nil

	case eventAppliedMsg:
		if msg.err != nil {
			m.notification = msg.err.Error()
			m.notifErr = true
		} else {
			m.notification = ""
			m.notifErr = false
		}
		return m, loadRankings(m.board)

	case refreshTickMsg:
		return m, tea.Batch(loadRankings(m.board), refreshTick())
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *Model) View() string {
	var b strings.Builder

	mode := "weighted"
	if m.state.Mode == rank.ModeColumn {
		mode = fmt.Sprintf("column:%s %s", m.state.Column, m.state.Direction)
	}
	b.WriteString(titleStyle.Render("Cashu Mint Status Board"))
	b.WriteString(modeStyle.Render(mode))
	b.WriteString("\n\n")

	b.WriteString(m.table.View())
	b.WriteString("\n")

	if m.notification != "" {
		style := notifStyle
		if m.notifErr {
			style = errNotifStyle
		}
		b.WriteString(style.Render(m.notification))
		b.WriteString("\n")
	}

	b.WriteString(helpBar())
	return b.String()
}

func (m *Model) tableRows() []table.Row {
	rows := make([]table.Row, len(m.rows))
	for i, st := range m.rows {
		status := downStyle.Render("down")
		if st.IsUp {
			status = upStyle.Render("up")
		}
		latency := "-"
		if st.LatencyMS != models.LatencyUnknown {
			latency = fmt.Sprintf("%d ms", st.LatencyMS)
		}
		rows[i] = table.Row{
			st.DisplayName(),
			status,
			fmt.Sprintf("%.0f%%", st.Uptime*100),
			fmt.Sprintf("%d", st.CurrencyCount),
			fmt.Sprintf("%d", st.CapacitySats),
			fmt.Sprintf("%d", st.ChannelCount),
			latency,
			fmt.Sprintf("%d", st.MintCount),
			fmt.Sprintf("%d", st.MeltCount),
			fmt.Sprintf("%d", st.ErrorCount),
			fmt.Sprintf("%.0f", rank.Score(st, m.weights)),
		}
	}
	return rows
}

// boardColumns builds the header row, marking the cursor position and the
// active sort column/direction.
func boardColumns(state rank.SortState, cursor int) []table.Column {
	titles := []string{"Mint", "Status", "Uptime", "Units", "Capacity", "Channels", "Latency", "Mints", "Melts", "Errors"}
	widths := []int{28, 7, 7, 6, 12, 9, 9, 7, 7, 7}

	cols := make([]table.Column, 0, len(titles)+1)
	for i, title := range titles {
		if i == cursor {
			title = "[" + title + "]"
		}
		if state.Mode == rank.ModeColumn && state.Column == sortColumns[i] {
			if state.Direction == rank.Asc {
				title += " ▲"
			} else {
				title += " ▼"
			}
		}
		cols = append(cols, table.Column{Title: title, Width: widths[i]})
	}
	cols = append(cols, table.Column{Title: "Score", Width: 12})
	return cols
}

func helpBar() string {
	parts := []string{
		helpKeyStyle.Render("←/→") + " column",
		helpKeyStyle.Render("enter") + " sort",
		helpKeyStyle.Render("w") + " weighted",
		helpKeyStyle.Render("R") + " reset",
		helpKeyStyle.Render("r") + " refresh",
		helpKeyStyle.Render("q") + " quit",
	}
	return helpBarStyle.Render(strings.Join(parts, "  "))
}
