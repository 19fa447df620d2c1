package rank

import (
	"sort"
	"strings"

	"github.com/shroominic/cashu-mint-status-board/internal/storage/models"
	pkgerrors "github.com/shroominic/cashu-mint-status-board/pkg/errors"
)

// Mode selects between the weighted composite score and a single raw column.
type Mode string

const (
	ModeWeighted Mode = "weighted"
	ModeColumn   Mode = "column"
)

// Direction is the sort direction for column mode.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// SortState holds the active sort mode. Weighted mode always orders by
// descending score; Column/Direction only apply in column mode.
type SortState struct {
	Mode      Mode      `json:"mode"`
	Column    string    `json:"column,omitempty"`
	Direction Direction `json:"direction"`
}

// DefaultSortState returns the initial weighted/descending state.
func DefaultSortState() SortState {
	return SortState{Mode: ModeWeighted, Direction: Desc}
}

// Column keys.
const (
	ColName     = "name"
	ColStatus   = "status"
	ColUptime   = "uptime"
	ColCapacity = "capacity"
	ColChannels = "channels"
	ColCurrency = "currency"
	ColLatency  = "latency"
	ColMints    = "mints"
	ColMelts    = "melts"
	ColErrors   = "errors"
)

var knownColumns = map[string]bool{
	ColName: true, ColStatus: true, ColUptime: true, ColCapacity: true,
	ColChannels: true, ColCurrency: true, ColLatency: true,
	ColMints: true, ColMelts: true, ColErrors: true,
}

// Columns whose natural first-click order is ascending (lower is better).
var ascByDefault = map[string]bool{
	ColLatency: true,
	ColName:    true,
	ColErrors:  true,
}

// ValidColumn reports whether key names a sortable column.
func ValidColumn(key string) bool { return knownColumns[key] }

// Click applies the header-click policy: clicking the active column toggles
// its direction, clicking another column enters column mode on it with its
// default direction. An unknown key returns ErrUnknownColumn and leaves the
// prior state in effect.
func Click(state SortState, column string) (SortState, error) {
	if !ValidColumn(column) {
		return state, pkgerrors.ErrUnknownColumn
	}
	if state.Mode == ModeColumn && state.Column == column {
		if state.Direction == Desc {
			state.Direction = Asc
		} else {
			state.Direction = Desc
		}
		return state, nil
	}
	dir := Desc
	if ascByDefault[column] {
		dir = Asc
	}
	return SortState{Mode: ModeColumn, Column: column, Direction: dir}, nil
}

// Sort orders the snapshot in place and returns it. Ties resolve by the
// lowercase display name (URL fallback) ascending in both modes, independent
// of direction, so equal records always land in the same order.
func Sort(statuses []*models.MintStatus, state SortState, w Weights) []*models.MintStatus {
	sort.SliceStable(statuses, func(i, j int) bool {
		return less(statuses[i], statuses[j], state, w)
	})
	return statuses
}

func less(a, b *models.MintStatus, state SortState, w Weights) bool {
	var c int
	if state.Mode == ModeColumn && state.Column == ColName {
		c = strings.Compare(sortName(a), sortName(b))
		if state.Direction == Desc {
			c = -c
		}
	} else if state.Mode == ModeColumn {
		c = compareFloat(columnValue(a, state.Column), columnValue(b, state.Column))
		if state.Direction == Desc {
			c = -c
		}
	} else {
		// Weighted mode: descending score.
		c = compareFloat(Score(b, w), Score(a, w))
	}
	if c != 0 {
		return c < 0
	}
	return sortName(a) < sortName(b)
}

// columnValue extracts the raw numeric value of a column. The latency
// sentinel is compared as-is: unmeasured mints sort past every real
// measurement.
func columnValue(s *models.MintStatus, column string) float64 {
	switch column {
	case ColStatus:
		if s.IsUp {
			return 1
		}
		return 0
	case ColUptime:
		return s.Uptime
	case ColCapacity:
		return float64(s.CapacitySats)
	case ColChannels:
		return float64(s.ChannelCount)
	case ColCurrency:
		return float64(s.CurrencyCount)
	case ColLatency:
		return float64(s.LatencyMS)
	case ColMints:
		return float64(s.MintCount)
	case ColMelts:
		return float64(s.MeltCount)
	case ColErrors:
		return float64(s.ErrorCount)
	}
	return 0
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func sortName(s *models.MintStatus) string {
	return strings.ToLower(s.DisplayName())
}
