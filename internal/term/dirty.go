package term

// dirtyTracker records which viewport rows changed since the last clear.
// One bool per row, owned by the Handle, never by the engine. Fresh and
// freshly resized trackers start with every row dirty.
type dirtyTracker struct {
	rows []bool
}

func newDirtyTracker(rows int) *dirtyTracker {
	t := &dirtyTracker{rows: make([]bool, rows)}
	t.markAll()
	return t
}

// markAll flags every row as changed.
func (t *dirtyTracker) markAll() {
	for i := range t.rows {
		t.rows[i] = true
	}
}

// clear flags every row as clean.
func (t *dirtyTracker) clear() {
	for i := range t.rows {
		t.rows[i] = false
	}
}

// any reports whether at least one row is dirty.
func (t *dirtyTracker) any() bool {
	for _, d := range t.rows {
		if d {
			return true
		}
	}
	return false
}

// row reports the dirty state of one row. Out of range rows report clean, a
// safe default for caller error.
func (t *dirtyTracker) row(i int) bool {
	if i < 0 || i >= len(t.rows) {
		return false
	}
	return t.rows[i]
}

// resize replaces the tracker state with a fresh all-dirty array of n rows.
// Prior bookkeeping is meaningless after a geometry change.
func (t *dirtyTracker) resize(n int) {
	t.rows = make([]bool, n)
	t.markAll()
}

func (t *dirtyTracker) len() int {
	return len(t.rows)
}
