package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which the output pane is
	// stacked under the tab list instead of beside it.
	LayoutCompactWidth = 100

	// TabListMinWidth is the narrowest the tab list gets in wide layouts.
	TabListMinWidth = 32
)

// Timing constants.
const (
	// OutputRefresh is how often the focused terminal's output is re-read.
	OutputRefresh = 250 * time.Millisecond

	// ToastDuration is how long a toast stays in the footer.
	ToastDuration = 4 * time.Second
)

// Modal sizing.
const (
	ModalWidth      = 60
	PickerMaxHeight = 10
)
