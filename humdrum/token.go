// Package humdrum holds the small lexical model the grid writes into: tokens,
// lines of tab separated tokens and files of lines, plus the conversion
// between recip strings and durations.
package humdrum

import (
	"strings"
)

// Token is a single cell of a Humdrum record.
type Token struct {
	Text string
}

func NewToken(text string) *Token {
	return &Token{Text: text}
}

func (t *Token) String() string {
	if t == nil {
		return ""
	}
	return t.Text
}

// IsNull reports whether the token is one of the null markers ".", "*", "!"
// or "!!".
func (t *Token) IsNull() bool {
	if t == nil {
		return true
	}
	switch t.Text {
	case ".", "*", "!", "!!":
		return true
	}
	return false
}

func (t *Token) IsData() bool {
	if t == nil || t.Text == "" {
		return false
	}
	switch t.Text[0] {
	case '*', '!', '=':
		return false
	}
	return true
}

func (t *Token) IsBarline() bool {
	return t != nil && strings.HasPrefix(t.Text, "=")
}

func (t *Token) IsInterpretation() bool {
	return t != nil && strings.HasPrefix(t.Text, "*")
}

func (t *Token) IsComment() bool {
	return t != nil && strings.HasPrefix(t.Text, "!")
}

func (t *Token) IsGlobalComment() bool {
	return t != nil && strings.HasPrefix(t.Text, "!!")
}

func (t *Token) IsLocalComment() bool {
	return t.IsComment() && !t.IsGlobalComment()
}

func (t *Token) IsClef() bool {
	return t != nil && strings.HasPrefix(t.Text, "*clef")
}

// IsSplit reports "*^" and its counted form "*^N".
func (t *Token) IsSplit() bool {
	return t != nil && strings.HasPrefix(t.Text, "*^")
}

func (t *Token) IsMerge() bool {
	return t != nil && t.Text == "*v"
}

func (t *Token) IsManipulator() bool {
	if t == nil {
		return false
	}
	switch t.Text {
	case "*v", "*x", "*+", "*-":
		return true
	}
	return t.IsSplit() || strings.HasPrefix(t.Text, "**")
}

func (t *Token) IsRest() bool {
	return t.IsData() && strings.Contains(t.Text, "r")
}

func (t *Token) IsGrace() bool {
	return t.IsData() && strings.Contains(t.Text, "q")
}

// Duration is the duration of a data token in quarter notes; zero for
// everything else.
func (t *Token) Duration() Rat {
	if !t.IsData() {
		return Rat{}
	}
	return RecipToDuration(t.Text)
}
