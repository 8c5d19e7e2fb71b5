// Package history selects which prior turns of a chat are replayed to the
// language model.
package history

// Window returns the last w messages of msgs, which must already be in
// chronological order. Shorter input is returned whole and w <= 0 yields an
// empty window. The result never aliases msgs.
func Window[M any](msgs []M, w int) []M {
	if w <= 0 || len(msgs) == 0 {
		return []M{}
	}

	start := 0
	if len(msgs) > w {
		start = len(msgs) - w
	}

	out := make([]M, len(msgs)-start)
	copy(out, msgs[start:])
	return out
}
