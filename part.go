package humgrid

// Part is the list of staves of one part on one slice, plus the part's side
// spines.
type Part struct {
	Staves []*Staff
	Side   Side
}

// Staff returns staff i, or nil when i is out of range.
func (p *Part) Staff(i int) *Staff {
	if p == nil || i < 0 || i >= len(p.Staves) {
		return nil
	}
	return p.Staves[i]
}

func newStaff() *Staff { return &Staff{} }
