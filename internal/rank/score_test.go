package rank

import (
	"math"
	"testing"

	"github.com/shroominic/cashu-mint-status-board/internal/storage/models"
)

func baseStatus() *models.MintStatus {
	s := models.NewMintStatus("https://mint.example.com")
	s.IsUp = true
	s.CapacitySats = 1000
	s.ChannelCount = 5
	s.CurrencyCount = 3
	s.LatencyMS = 200
	return s
}

func TestStatusBiasDominates(t *testing.T) {
	w := DefaultWeights()

	up := models.NewMintStatus("https://up.example.com")
	up.IsUp = true

	// A dead mint with every other field maxed out must still rank below.
	down := models.NewMintStatus("https://down.example.com")
	down.CapacitySats = 1_000_000_000
	down.ChannelCount = 10_000
	down.CurrencyCount = 1_000
	down.LatencyMS = 1
	down.MintCount = 1_000_000
	down.MeltCount = 1_000_000

	if Score(up, w) <= Score(down, w) {
		t.Errorf("live mint scored %f, dead mint %f; status bias should dominate",
			Score(up, w), Score(down, w))
	}

	w.Status = false
	if Score(up, w) >= Score(down, w) {
		t.Errorf("with status disabled the loaded dead mint should outrank the empty live one")
	}
}

func TestScoreMonotonicity(t *testing.T) {
	w := DefaultWeights()

	tests := []struct {
		name   string
		bump   func(s *models.MintStatus)
		higher bool
	}{
		{"capacity", func(s *models.MintStatus) { s.CapacitySats *= 10 }, true},
		{"channels", func(s *models.MintStatus) { s.ChannelCount++ }, true},
		{"currencies", func(s *models.MintStatus) { s.CurrencyCount++ }, true},
		{"latency", func(s *models.MintStatus) { s.LatencyMS += 100 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := baseStatus()
			b := baseStatus()
			tt.bump(b)

			sa, sb := Score(a, w), Score(b, w)
			if tt.higher && sb <= sa {
				t.Errorf("increasing %s should raise the score: %f -> %f", tt.name, sa, sb)
			}
			if !tt.higher && sb >= sa {
				t.Errorf("increasing %s should lower the score: %f -> %f", tt.name, sa, sb)
			}
		})
	}
}

func TestActivityModulation(t *testing.T) {
	w := DefaultWeights()

	activityTerm := func(errors int64) float64 {
		with := baseStatus()
		with.MintCount = 100
		with.MeltCount = 50
		with.ErrorCount = errors

		without := baseStatus()
		without.ErrorCount = errors

		return Score(with, w) - Score(without, w)
	}

	prev := math.Inf(1)
	for _, errs := range []int64{0, 10, 150, 1000, 100000} {
		term := activityTerm(errs)
		if term < 0 {
			t.Errorf("activity term went negative at errors=%d: %f", errs, term)
		}
		if term > prev {
			t.Errorf("activity term grew when errors rose to %d: %f > %f", errs, term, prev)
		}
		prev = term
	}

	// Zero activity: error count alone must not change the score.
	idle := baseStatus()
	idle.ErrorCount = 10000
	if got, want := Score(idle, w), Score(baseStatus(), w); got != want {
		t.Errorf("errors penalized an idle mint: %f != %f", got, want)
	}
}

func TestScoreWorkedExample(t *testing.T) {
	w := Weights{Status: true, Currency: 50, Capacity: 5000, Channels: 20,
		Latency: 5, Mints: 10, Melts: 10, Errors: 100}

	a := baseStatus()
	a.MintCount = 100
	a.MeltCount = 50
	a.ErrorCount = 150

	b := baseStatus()

	// activity = 1500, errorRate = 0.5, penalty = 0.5, modulation = 0.5 -> 750.
	diff := Score(a, w) - Score(b, w)
	if math.Abs(diff-750) > 1e-9 {
		t.Errorf("activity contribution = %f, want 750", diff)
	}
	if Score(a, w) <= Score(b, w) {
		t.Errorf("record with modulated activity should outrank the idle one")
	}
}

func TestUnknownLatencyFixedPenalty(t *testing.T) {
	w := DefaultWeights()

	unknown := baseStatus()
	unknown.LatencyMS = models.LatencyUnknown

	fixed := baseStatus()
	fixed.LatencyMS = 1000

	// The sentinel is penalized like a 1000ms measurement, not like 99999ms.
	if got, want := Score(unknown, w), Score(fixed, w); got != want {
		t.Errorf("sentinel latency scored %f, want the fixed-penalty score %f", got, want)
	}
}

func TestLatencyClass(t *testing.T) {
	tests := []struct {
		ms   int
		want string
	}{
		{models.LatencyUnknown, LatencyNone},
		{0, LatencyFast},
		{300, LatencyFast},
		{301, LatencyOK},
		{1000, LatencyOK},
		{1001, LatencySlow},
		{50000, LatencySlow},
	}

	for _, tt := range tests {
		if got := LatencyClass(tt.ms); got != tt.want {
			t.Errorf("LatencyClass(%d) = %s, want %s", tt.ms, got, tt.want)
		}
	}
}
