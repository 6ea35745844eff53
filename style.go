package humgrid

import "strings"

type (
	// BarlineVisual is the drawn shape of a barline. Ordered so that the
	// heavier of two styles wins when a right barline meets the next
	// measure's left barline.
	BarlineVisual int

	// BarlineRepeat marks repeat dots on either side of a barline.
	BarlineRepeat int

	// BarlineStyle combines a shape with repeat dots.
	BarlineStyle struct {
		Visual BarlineVisual `yaml:",omitempty"`
		Repeat BarlineRepeat `yaml:",omitempty"`
	}

	FermataStyle int
)

const (
	Regular BarlineVisual = iota
	Short
	Tick
	Dotted
	Dashed
	Invisible
	Heavy
	Double
	HeavyLight
	HeavyHeavy
	Final
	NoBarline
)

const (
	NoRepeat BarlineRepeat = iota
	RepeatBackward
	RepeatForward
	RepeatBoth
)

const (
	NoFermata FermataStyle = iota
	Fermata
	FermataAbove
	FermataBelow
)

var barlineVisualNames = map[string]BarlineVisual{
	"regular": Regular, "short": Short, "tick": Tick, "dotted": Dotted,
	"dashed": Dashed, "invisible": Invisible, "heavy": Heavy, "double": Double,
	"heavy-light": HeavyLight, "heavy-heavy": HeavyHeavy, "final": Final,
	"none": NoBarline,
}

var barlineRepeatNames = map[string]BarlineRepeat{
	"": NoRepeat, "none": NoRepeat, "backward": RepeatBackward,
	"forward": RepeatForward, "both": RepeatBoth,
}

var fermataNames = map[string]FermataStyle{
	"": NoFermata, "none": NoFermata, "fermata": Fermata, "above": FermataAbove,
	"below": FermataBelow,
}

var plainBarlines = map[BarlineVisual]string{
	Regular: "", Short: "'", Tick: "`", Dotted: ".", Dashed: ":",
	Invisible: "-", Heavy: "!", Double: "||", HeavyLight: "!|",
	HeavyHeavy: "!!", Final: "=",
}

var backwardRepeats = map[BarlineVisual]string{
	Regular: ":|", Heavy: ":!", HeavyLight: ":!|", Final: ":|!",
	HeavyHeavy: ":!!", Double: ":||",
}

var forwardRepeats = map[BarlineVisual]string{
	Regular: "|:", Heavy: "!:", HeavyLight: "!|:", Final: "|!:",
	HeavyHeavy: "!!:", Double: "||:",
}

var bothRepeats = map[BarlineVisual]string{
	Regular: ":|:", Heavy: ":!:", HeavyLight: ":!|:", Final: ":|!:",
	HeavyHeavy: ":!!:", Double: ":||:",
}

var fermataStrings = map[FermataStyle]string{
	NoFermata: "", Fermata: ";", FermataAbove: ";>", FermataBelow: ";<",
}

// ParseBarlineVisual accepts names such as "final" or "heavy-light".
func ParseBarlineVisual(s string) (BarlineVisual, bool) {
	v, ok := barlineVisualNames[strings.ToLower(s)]
	return v, ok
}

func ParseBarlineRepeat(s string) (BarlineRepeat, bool) {
	v, ok := barlineRepeatNames[strings.ToLower(s)]
	return v, ok
}

func ParseFermataStyle(s string) (FermataStyle, bool) {
	v, ok := fermataNames[strings.ToLower(s)]
	return v, ok
}

// Merge combines the right barline of a measure with the left barline of
// the next one into the single barline shared by the two.
func (s BarlineStyle) Merge(next BarlineStyle) BarlineStyle {
	ret := s
	if next.Visual > ret.Visual && next.Visual != NoBarline || ret.Visual == NoBarline {
		ret.Visual = next.Visual
	}
	ret.Repeat = s.Repeat | next.Repeat
	return ret
}

// String returns the barline suffix placed after "=" and the measure
// number. A repeat combined with a shape that has no repeat form falls back
// to the regular repeat. NoBarline renders invisible.
func (s BarlineStyle) String() string {
	table := map[BarlineRepeat]map[BarlineVisual]string{
		RepeatBackward: backwardRepeats,
		RepeatForward:  forwardRepeats,
		RepeatBoth:     bothRepeats,
	}[s.Repeat]
	if table == nil {
		if s.Visual == NoBarline {
			return "-"
		}
		return plainBarlines[s.Visual]
	}
	if str, ok := table[s.Visual]; ok {
		return str
	}
	return table[Regular]
}

func (f FermataStyle) String() string {
	return fermataStrings[f]
}

// barToken builds a barline token. label is the measure number (may be
// empty); a final barline puts its extra "=" before the number.
func barToken(label string, style BarlineStyle, fermata FermataStyle) string {
	body := style.String() + fermata.String()
	if strings.HasPrefix(body, "=") {
		return "==" + label + body[1:]
	}
	return "=" + label + body
}
