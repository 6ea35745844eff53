// Package report renders human readable dumps of a humgrid.Grid, one line
// per slice, for debugging conversions.
package report

import (
	"bytes"
	"embed"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig"
	"github.com/vsariola/humgrid"
	"github.com/vsariola/humgrid/humdrum"
)

// Reporter executes the dump templates.
type Reporter struct {
	Template *template.Template
}

//go:embed templates/*
var templateFS embed.FS

// New returns a reporter using the built in templates.
func New() (*Reporter, error) {
	tmpl, err := template.New("base").Funcs(sprig.TxtFuncMap()).ParseFS(templateFS, "templates/*.txt")
	if err != nil {
		return nil, fmt.Errorf(`could not create templates: %v`, err)
	}
	return &Reporter{Template: tmpl}, nil
}

// NewFromTemplates parses the templates in a directory instead. The
// directory needs to define dump.txt.
func NewFromTemplates(templateDirectory string) (*Reporter, error) {
	globPtrn := filepath.Join(templateDirectory, "*.*")
	tmpl, err := template.New("base").Funcs(sprig.TxtFuncMap()).ParseGlob(globPtrn)
	if err != nil {
		return nil, fmt.Errorf(`could not create template based on directory "%v": %v`, templateDirectory, err)
	}
	return &Reporter{Template: tmpl}, nil
}

// GridMacros is the data the templates are executed with.
type GridMacros struct {
	Grid *humgrid.Grid
}

// Cells describes every staff of s, parts and staves in index order. Voices
// are separated by spaces; a missing voice is "~" and a voice without a
// token "_". Side tokens follow after a slash.
func (GridMacros) Cells(s *humgrid.Slice) []string {
	var ret []string
	for p, part := range s.Parts {
		for st, staff := range part.Staves {
			var b strings.Builder
			fmt.Fprintf(&b, "%d.%d:", p, st)
			for _, v := range staff.Voices {
				switch {
				case v == nil:
					b.WriteString(" ~")
				case v.Token == nil:
					b.WriteString(" _")
				default:
					b.WriteString(" " + v.Text())
				}
			}
			sides := sideTokens(&staff.Side)
			if st == len(part.Staves)-1 {
				sides = append(sides, sideTokens(&part.Side)...)
			}
			if len(sides) > 0 {
				b.WriteString(" / " + strings.Join(sides, " "))
			}
			ret = append(ret, b.String())
		}
	}
	return ret
}

func sideTokens(s *humgrid.Side) []string {
	var ret []string
	if s.XMLID != nil {
		ret = append(ret, s.XMLID.Text)
	}
	for _, v := range s.Verses {
		if v != nil {
			ret = append(ret, v.Text)
		}
	}
	for _, t := range []*humdrum.Token{s.Dynamics, s.FiguredBass, s.Harmony} {
		if t != nil {
			ret = append(ret, t.Text)
		}
	}
	return ret
}

// Dump renders the grid in its current state, before or after Transfer.
func (r *Reporter) Dump(g *humgrid.Grid) (string, error) {
	var buf bytes.Buffer
	if err := r.Template.ExecuteTemplate(&buf, "dump.txt", GridMacros{Grid: g}); err != nil {
		return "", fmt.Errorf(`could not execute template "dump.txt": %v`, err)
	}
	return buf.String(), nil
}
