package spread

// Plan is the chunk layout for n cards with bound Size. The first chunk
// holds Runt cards and each of the Chunks later ones holds exactly Size.
type Plan struct {
	Cards  int
	Size   int
	Runt   int
	Chunks int
}

// NewPlan computes the layout for n cards. n must be at least 1.
func NewPlan(n, size int) Plan {
	runt := n % size
	if runt == 0 {
		runt = size
	}
	return Plan{
		Cards:  n,
		Size:   size,
		Runt:   runt,
		Chunks: (n - 1) / size,
	}
}

// Total returns the number of commands per chain.
func (p Plan) Total() int {
	return p.Chunks + 1
}

// Bounds returns the half-open card range of chunk k, 0 being the runt.
func (p Plan) Bounds(k int) (start, end int) {
	if k == 0 {
		return 0, p.Runt
	}
	start = p.Runt + (k-1)*p.Size
	return start, start + p.Size
}
