package rank

import (
	"errors"
	"testing"

	"github.com/shroominic/cashu-mint-status-board/internal/storage/models"
	pkgerrors "github.com/shroominic/cashu-mint-status-board/pkg/errors"
)

func mint(url, name string) *models.MintStatus {
	s := models.NewMintStatus(url)
	s.Name = name
	return s
}

func urls(statuses []*models.MintStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = s.URL
	}
	return out
}

func assertOrder(t *testing.T, got []*models.MintStatus, want ...string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d records, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].URL != want[i] {
			t.Fatalf("order = %v, want %v", urls(got), want)
		}
	}
}

func TestSortWeighted(t *testing.T) {
	w := DefaultWeights()

	a := mint("https://a.example.com", "Alpha")
	a.IsUp = true
	b := mint("https://b.example.com", "Beta")
	b.IsUp = true
	b.ChannelCount = 10
	c := mint("https://c.example.com", "Gamma")

	got := Sort([]*models.MintStatus{a, c, b}, DefaultSortState(), w)
	assertOrder(t, got, "https://b.example.com", "https://a.example.com", "https://c.example.com")
}

func TestSortColumnDirections(t *testing.T) {
	w := DefaultWeights()

	a := mint("https://a.example.com", "Alpha")
	a.LatencyMS = 500
	b := mint("https://b.example.com", "Beta")
	b.LatencyMS = 100
	c := mint("https://c.example.com", "Gamma")
	// c keeps the sentinel: unmeasured sorts past every real value.

	asc := Sort([]*models.MintStatus{a, b, c},
		SortState{Mode: ModeColumn, Column: ColLatency, Direction: Asc}, w)
	assertOrder(t, asc, "https://b.example.com", "https://a.example.com", "https://c.example.com")

	desc := Sort([]*models.MintStatus{a, b, c},
		SortState{Mode: ModeColumn, Column: ColLatency, Direction: Desc}, w)
	assertOrder(t, desc, "https://c.example.com", "https://a.example.com", "https://b.example.com")
}

func TestSortNameColumn(t *testing.T) {
	w := DefaultWeights()

	// Name comparison is case-insensitive and falls back to the URL.
	a := mint("https://zeta.example.com", "alpha")
	b := mint("https://a.example.com", "Beta")
	c := mint("https://gamma.example.com", "")

	got := Sort([]*models.MintStatus{c, b, a},
		SortState{Mode: ModeColumn, Column: ColName, Direction: Asc}, w)
	assertOrder(t, got, "https://zeta.example.com", "https://a.example.com", "https://gamma.example.com")
}

func TestSortTieBreakIgnoresDirection(t *testing.T) {
	w := DefaultWeights()

	make3 := func() []*models.MintStatus {
		a := mint("https://a.example.com", "Charlie")
		b := mint("https://b.example.com", "Alpha")
		c := mint("https://c.example.com", "Bravo")
		for _, s := range []*models.MintStatus{a, b, c} {
			s.ChannelCount = 7
		}
		return []*models.MintStatus{a, b, c}
	}

	for _, dir := range []Direction{Asc, Desc} {
		got := Sort(make3(), SortState{Mode: ModeColumn, Column: ColChannels, Direction: dir}, w)
		assertOrder(t, got, "https://b.example.com", "https://c.example.com", "https://a.example.com")
	}

	// Weighted mode breaks ties the same way.
	got := Sort(make3(), DefaultSortState(), w)
	assertOrder(t, got, "https://b.example.com", "https://c.example.com", "https://a.example.com")
}

func TestClick(t *testing.T) {
	tests := []struct {
		name  string
		state SortState
		col   string
		want  SortState
	}{
		{
			"enter column mode with descending default",
			DefaultSortState(), ColCapacity,
			SortState{Mode: ModeColumn, Column: ColCapacity, Direction: Desc},
		},
		{
			"latency defaults ascending",
			DefaultSortState(), ColLatency,
			SortState{Mode: ModeColumn, Column: ColLatency, Direction: Asc},
		},
		{
			"name defaults ascending",
			DefaultSortState(), ColName,
			SortState{Mode: ModeColumn, Column: ColName, Direction: Asc},
		},
		{
			"errors defaults ascending",
			DefaultSortState(), ColErrors,
			SortState{Mode: ModeColumn, Column: ColErrors, Direction: Asc},
		},
		{
			"clicking the active column toggles",
			SortState{Mode: ModeColumn, Column: ColCapacity, Direction: Desc}, ColCapacity,
			SortState{Mode: ModeColumn, Column: ColCapacity, Direction: Asc},
		},
		{
			"toggles back",
			SortState{Mode: ModeColumn, Column: ColCapacity, Direction: Asc}, ColCapacity,
			SortState{Mode: ModeColumn, Column: ColCapacity, Direction: Desc},
		},
		{
			"switching columns resets to the default direction",
			SortState{Mode: ModeColumn, Column: ColCapacity, Direction: Asc}, ColChannels,
			SortState{Mode: ModeColumn, Column: ColChannels, Direction: Desc},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Click(tt.state, tt.col)
			if err != nil {
				t.Fatalf("Click: %v", err)
			}
			if got != tt.want {
				t.Errorf("Click = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestClickUnknownColumn(t *testing.T) {
	prior := SortState{Mode: ModeColumn, Column: ColLatency, Direction: Asc}

	got, err := Click(prior, "bogus")
	if !errors.Is(err, pkgerrors.ErrUnknownColumn) {
		t.Fatalf("err = %v, want ErrUnknownColumn", err)
	}
	if got != prior {
		t.Errorf("state changed on unknown column: %+v", got)
	}
}

func TestWeightsSet(t *testing.T) {
	w := DefaultWeights()

	if err := w.Set(CriterionLatency, 42); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if w.Latency != 42 {
		t.Errorf("Latency = %f, want 42", w.Latency)
	}

	if err := w.Set(CriterionStatus, 1); !errors.Is(err, pkgerrors.ErrUnknownCriterion) {
		t.Errorf("status is a toggle, Set should reject it: %v", err)
	}
	if err := w.Set("bogus", 1); !errors.Is(err, pkgerrors.ErrUnknownCriterion) {
		t.Errorf("unknown criterion: %v", err)
	}
}
