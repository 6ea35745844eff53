package humdrum

import (
	"io"
	"strings"
)

type (
	// Line is one record: tokens separated by tabs when written.
	Line []*Token

	// File is an ordered list of lines.
	File struct {
		Lines []Line
	}
)

func (l Line) String() string {
	var b strings.Builder
	for i, t := range l {
		if i > 0 {
			b.WriteByte('\t')
		}
		b.WriteString(t.String())
	}
	return b.String()
}

// Fields returns the token texts of the line.
func (l Line) Fields() []string {
	ret := make([]string, len(l))
	for i, t := range l {
		ret[i] = t.String()
	}
	return ret
}

func (f *File) AppendLine(l Line) {
	f.Lines = append(f.Lines, l)
}

// InsertLine inserts l before index; an index past the end appends.
func (f *File) InsertLine(index int, l Line) {
	if index >= len(f.Lines) {
		f.Lines = append(f.Lines, l)
		return
	}
	if index < 0 {
		index = 0
	}
	f.Lines = append(f.Lines, nil)
	copy(f.Lines[index+1:], f.Lines[index:])
	f.Lines[index] = l
}

// Last returns the last line, or nil if the file is empty.
func (f *File) Last() Line {
	if len(f.Lines) == 0 {
		return nil
	}
	return f.Lines[len(f.Lines)-1]
}

func (f *File) String() string {
	var b strings.Builder
	for _, l := range f.Lines {
		b.WriteString(l.String())
		b.WriteByte('\n')
	}
	return b.String()
}

func (f *File) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, f.String())
	return int64(n), err
}
