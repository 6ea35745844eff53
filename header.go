package humgrid

import (
	"strconv"
	"strings"

	"github.com/vsariola/humgrid/humdrum"
)

// writeHeader appends the exclusive interpretations, part and staff
// numbers and, when any part is named, the instrument names. The layout is
// taken from the first spined slice, with one spine per staff.
func (g *Grid) writeHeader(out *humdrum.File) {
	model := g.firstSpined()
	if model == nil {
		return
	}
	interp := g.Interpretation
	if interp == "" {
		interp = "**kern"
	}

	out.AppendLine(g.headerLine(model, "**recip", func(p, st int) []string {
		if st < 0 {
			return g.partSides(p, "**dynam", "**fb", "**mxhm")
		}
		return append([]string{interp}, g.staffSides(p, st, "**xmlid", "**text")...)
	}))

	out.AppendLine(g.headerLine(model, "*", func(p, st int) []string {
		part := "*part" + strconv.Itoa(p+1)
		if st < 0 {
			return g.partSides(p, part, part, part)
		}
		return append([]string{part}, g.staffSides(p, st, part, part)...)
	}))

	total := 0
	for _, part := range model.Parts {
		total += len(part.Staves)
	}
	numbers := staffNumbers(model, total)
	out.AppendLine(g.headerLine(model, "*", func(p, st int) []string {
		if st < 0 {
			var list []string
			for k := range model.Parts[p].Staves {
				list = append(list, strconv.Itoa(numbers[p][k]))
			}
			return g.partSides(p, "*staff"+strings.Join(list, "/"), "*", "*")
		}
		staff := "*staff" + strconv.Itoa(numbers[p][st])
		return append([]string{staff}, g.staffSides(p, st, staff, staff)...)
	}))

	named := false
	for p := range model.Parts {
		named = named || g.PartName(p) != ""
	}
	if !named {
		return
	}
	out.AppendLine(g.headerLine(model, "*", func(p, st int) []string {
		if st < 0 {
			return g.partSides(p, "*", "*", "*")
		}
		name := "*"
		if n := g.PartName(p); n != "" {
			name = `*I"` + n
		}
		return append([]string{name}, g.staffSides(p, st, "*", "*")...)
	}))
}

// writeTerminator ends every spine of the header layout.
func (g *Grid) writeTerminator(out *humdrum.File) {
	model := g.firstSpined()
	if model == nil {
		return
	}
	out.AppendLine(g.headerLine(model, "*-", func(p, st int) []string {
		if st < 0 {
			return g.partSides(p, "*-", "*-", "*-")
		}
		return append([]string{"*-"}, g.staffSides(p, st, "*-", "*-")...)
	}))
}

// headerLine lays out one token list per staff and per part in output
// order; st is -1 for the part side spines.
func (g *Grid) headerLine(model *Slice, recip string, column func(p, st int) []string) humdrum.Line {
	var line humdrum.Line
	add := func(texts []string) {
		for _, t := range texts {
			line = append(line, humdrum.NewToken(t))
		}
	}
	if g.Recip {
		add([]string{recip})
	}
	for p := len(model.Parts) - 1; p >= 0; p-- {
		for st := len(model.Parts[p].Staves) - 1; st >= 0; st-- {
			add(column(p, st))
		}
		add(column(p, -1))
	}
	return line
}

func (g *Grid) staffSides(p, st int, xmlID, verse string) []string {
	var ret []string
	if g.XMLIDCount(p) > 0 {
		ret = append(ret, xmlID)
	}
	for i := 0; i < g.VerseCount(p, st); i++ {
		ret = append(ret, verse)
	}
	return ret
}

func (g *Grid) partSides(p int, dynamics, figuredBass, harmony string) []string {
	var ret []string
	if g.DynamicsCount(p) > 0 {
		ret = append(ret, dynamics)
	}
	if g.FiguredBassCount(p) > 0 {
		ret = append(ret, figuredBass)
	}
	for i := 0; i < g.HarmonyCount(p); i++ {
		ret = append(ret, harmony)
	}
	return ret
}

// staffNumbers numbers the staves in output order from total down to 1.
func staffNumbers(model *Slice, total int) [][]int {
	ret := make([][]int, len(model.Parts))
	n := total
	for p := len(model.Parts) - 1; p >= 0; p-- {
		ret[p] = make([]int, len(model.Parts[p].Staves))
		for st := len(model.Parts[p].Staves) - 1; st >= 0; st-- {
			ret[p][st] = n
			n--
		}
	}
	return ret
}
