// Package diff computes line-based edit scripts and renders them in
// unified format. It operates purely on text; callers decide where the
// two sides come from (blobs, the index, the working tree).
package diff

// OpKind classifies a line in an edit script.
type OpKind int

const (
	Equal  OpKind = iota // line present on both sides
	Insert               // line present on the new side only
	Delete               // line present on the old side only
)

// Op is a single operation in an edit script produced by Lines.
type Op struct {
	Kind OpKind
	Text string
}

// Lines computes the shortest edit script transforming a into b using
// the Myers algorithm over whole lines. It runs in O((N+M)*D) time
// where D is the length of the minimum script.
func Lines(a, b []string) []Op {
	n := len(a)
	m := len(b)

	if n == 0 && m == 0 {
		return nil
	}
	if n == 0 {
		ops := make([]Op, m)
		for i, line := range b {
			ops[i] = Op{Kind: Insert, Text: line}
		}
		return ops
	}
	if m == 0 {
		ops := make([]Op, n)
		for i, line := range a {
			ops[i] = Op{Kind: Delete, Text: line}
		}
		return ops
	}

	max := n + m
	size := 2*max + 1

	// v[k+max] is the furthest x reached on diagonal k.
	v := make([]int, size)

	// trace[d] is a snapshot of v after processing edit distance d.
	var trace [][]int

	for d := 0; d <= max; d++ {
		for k := -d; k <= d; k += 2 {
			idx := k + max
			var x int
			if k == -d || (k != d && v[idx-1] < v[idx+1]) {
				x = v[idx+1] // down move: insert
			} else {
				x = v[idx-1] + 1 // right move: delete
			}
			y := x - k

			// Follow the diagonal while lines match.
			for x < n && y < m && a[x] == b[y] {
				x++
				y++
			}

			v[idx] = x

			if x >= n && y >= m {
				snap := make([]int, size)
				copy(snap, v)
				trace = append(trace, snap)
				return backtrack(trace, a, b, d)
			}
		}

		snap := make([]int, size)
		copy(snap, v)
		trace = append(trace, snap)
	}

	// Unreachable: d = n+m always suffices.
	return nil
}

// backtrack reconstructs the edit script from the v snapshots recorded
// during the forward pass.
func backtrack(trace [][]int, a, b []string, dFinal int) []Op {
	n := len(a)
	m := len(b)
	max := n + m

	x := n
	y := m

	var ops []Op

	for d := dFinal; d > 0; d-- {
		k := x - y
		idx := k + max

		vPrev := trace[d-1]

		var prevK int
		if k == -d || (k != d && vPrev[idx-1] < vPrev[idx+1]) {
			prevK = k + 1 // arrived via insert
		} else {
			prevK = k - 1 // arrived via delete
		}

		prevX := vPrev[prevK+max]
		prevY := prevX - prevK

		for x > prevX && y > prevY {
			x--
			y--
			ops = append(ops, Op{Kind: Equal, Text: a[x]})
		}

		if k == prevK+1 {
			x--
			ops = append(ops, Op{Kind: Delete, Text: a[x]})
		} else {
			y--
			ops = append(ops, Op{Kind: Insert, Text: b[y]})
		}
	}

	// Leading diagonal at d = 0.
	for x > 0 && y > 0 {
		x--
		y--
		ops = append(ops, Op{Kind: Equal, Text: a[x]})
	}

	// The script was built back to front.
	for i, j := 0, len(ops)-1; i < j; i, j = i+1, j-1 {
		ops[i], ops[j] = ops[j], ops[i]
	}

	return ops
}
