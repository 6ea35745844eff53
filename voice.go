package humgrid

import "github.com/vsariola/humgrid/humdrum"

// Voice is one cell of the grid: a single token in one layer of one staff,
// with the duration the producer gave it. A Voice without a token is
// written as the null token of its slice.
type Voice struct {
	Token       *humdrum.Token
	Duration    humdrum.Rat
	Transferred bool
}

// NewVoice returns a voice holding text; an empty text leaves the token nil.
func NewVoice(text string, dur humdrum.Rat) *Voice {
	v := &Voice{Duration: dur}
	if text != "" {
		v.Token = humdrum.NewToken(text)
	}
	return v
}

// Text is the token text, or "" when there is no token.
func (v *Voice) Text() string {
	if v == nil {
		return ""
	}
	return v.Token.String()
}

// IsNull reports a missing voice, a missing token or a null token.
func (v *Voice) IsNull() bool {
	return v == nil || v.Token.IsNull()
}

// grow returns list extended to at least n elements, new elements produced
// by fill.
func grow[T any](list []T, n int, fill func() T) []T {
	for len(list) < n {
		list = append(list, fill())
	}
	return list
}

func nilOf[T any]() T {
	var zero T
	return zero
}
