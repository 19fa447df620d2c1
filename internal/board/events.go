package board

// Event is a discrete board input. The presentation layer (TUI, HTTP) turns
// user interactions into events; Apply is the single reducer.
type Event interface {
	isEvent()
}

// WeightChanged sets one numeric scoring weight. Applying it always forces
// weighted mode.
type WeightChanged struct {
	Criterion string
	Value     float64
}

// StatusToggled enables or disables the status criterion. Forces weighted
// mode like any weight edit.
type StatusToggled struct {
	Enabled bool
}

// ColumnClicked is a column-header activation: toggles direction on the
// active column or switches column mode to a new one.
type ColumnClicked struct {
	Column string
}

// ResetRequested restores default weights and the weighted/descending state.
type ResetRequested struct{}

// DatasetRefreshed signals that a named dataset was replaced upstream. Only
// the managed dataset triggers a reload and probe cycle.
type DatasetRefreshed struct {
	Dataset string
}

func (WeightChanged) isEvent()    {}
func (StatusToggled) isEvent()    {}
func (ColumnClicked) isEvent()    {}
func (ResetRequested) isEvent()   {}
func (DatasetRefreshed) isEvent() {}
