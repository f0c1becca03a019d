// Package gallery caps how much of a channel's image list is materialized at
// once: a first eager window, then fixed-size batches driven by a sentinel
// visibility trigger.
package gallery

// Window sizes.
const (
	DefaultInitialWindow = 50
	DefaultBatchSize     = 20
)

// Paginator tracks how many images of one channel are materialized. It is
// driven by the rendering layer: Visible bounds what to render, and
// NotifyVisible is called when the trailing sentinel scrolls into view.
// Once every image is materialized the paginator detaches and ignores
// further triggers.
type Paginator struct {
	initial int
	batch   int

	visible  int
	detached bool
}

// New creates a paginator with the given window sizes; non-positive values
// take the defaults.
func New(initial, batch int) *Paginator {
	if initial <= 0 {
		initial = DefaultInitialWindow
	}
	if batch <= 0 {
		batch = DefaultBatchSize
	}
	return &Paginator{initial: initial, batch: batch, visible: initial}
}

// Visible returns how many of total images should be rendered. The
// underlying list may have shrunk since the last batch; the count is always
// clamped to total.
func (p *Paginator) Visible(total int) int {
	if total <= p.visible {
		p.detached = true
		return total
	}
	return p.visible
}

// NotifyVisible handles the sentinel becoming visible: materialize one more
// batch. Returns true when the window grew; false when the paginator has
// already detached.
func (p *Paginator) NotifyVisible(total int) bool {
	if p.detached {
		return false
	}
	p.visible += p.batch
	if p.visible >= total {
		p.visible = total
		p.detached = true
	}
	return true
}

// Attached reports whether the sentinel observer is still wanted. The
// rendering layer drops its visibility observer once this is false.
func (p *Paginator) Attached() bool {
	return !p.detached
}

// Reset returns the paginator to its initial window, re-attaching the
// sentinel. Used when switching channels or after a bulk image change.
func (p *Paginator) Reset() {
	p.visible = p.initial
	p.detached = false
}
