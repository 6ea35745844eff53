package score_test

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/vsariola/humgrid"
	"github.com/vsariola/humgrid/humdrum"
	"github.com/vsariola/humgrid/score"
)

const songYaml = `
parts:
  - name: Voice
measures:
  - duration: 4
    right: {style: final}
    events:
      - {kind: clef, token: G2}
      - {kind: time, token: 4/4}
      - {kind: note, token: 4c}
      - {kind: note, time: 1, token: 4d}
      - {kind: note, time: 2, token: 2e}
      - {kind: verses, verses: [la]}
      - {kind: verses, time: 2, verses: [lu]}
`

const songJSON = `{
  "Parts": [{"Name": "Voice"}],
  "Measures": [{
    "Duration": 4,
    "Right": {"Style": "final"},
    "Events": [
      {"Kind": "clef", "Token": "G2"},
      {"Kind": "time", "Token": "4/4"},
      {"Kind": "note", "Token": "4c"},
      {"Kind": "note", "Time": 1, "Token": "4d"},
      {"Kind": "note", "Time": "2", "Token": "2e"},
      {"Kind": "verses", "Verses": ["la"]},
      {"Kind": "verses", "Time": 2, "Verses": ["lu"]}
    ]
  }]
}`

func transfer(t *testing.T, s *score.Score) string {
	t.Helper()
	g, err := score.Build(s)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	var out humdrum.File
	if err := g.Transfer(&out); err != nil {
		t.Fatalf("Transfer failed: %v", err)
	}
	return out.String()
}

func expectLines(t *testing.T, got string, lines ...string) {
	t.Helper()
	expected := strings.Join(lines, "\n") + "\n"
	if got == expected {
		return
	}
	diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(expected),
		B:        difflib.SplitLines(got),
		FromFile: "expected",
		ToFile:   "got",
		Context:  3,
	})
	t.Fatalf("output differs:\n%s", diff)
}

var expectedSong = []string{
	"**kern\t**text",
	"*part1\t*part1",
	"*staff1\t*staff1",
	"*I\"Voice\t*",
	"*clefG2\t*",
	"*M4/4\t*",
	"=1-\t=1-",
	"4c\tla",
	"4d\t.",
	"2e\tlu",
	"==\t==",
	"*-\t*-",
}

func TestBuildFromYaml(t *testing.T) {
	s, err := score.Unmarshal([]byte(songYaml))
	if err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	expectLines(t, transfer(t, s), expectedSong...)
}

func TestJSONAndYamlAgree(t *testing.T) {
	fromYaml, err := score.Unmarshal([]byte(songYaml))
	if err != nil {
		t.Fatalf("Unmarshal yaml failed: %v", err)
	}
	fromJSON, err := score.Unmarshal([]byte(songJSON))
	if err != nil {
		t.Fatalf("Unmarshal json failed: %v", err)
	}
	if !reflect.DeepEqual(fromJSON, fromYaml) {
		t.Fatalf("json and yaml scores differ: got %+v, expected %+v", fromJSON, fromYaml)
	}
}

func TestUnmarshalGarbage(t *testing.T) {
	if _, err := score.Unmarshal([]byte("measures: [")); err == nil {
		t.Fatalf("Unmarshal of broken input should fail")
	}
}

func TestTextIsNormalized(t *testing.T) {
	s, err := score.Unmarshal([]byte("parts: [{name: \"Cafe\u0301\"}]\nmeasures: [{duration: 1, events: [{kind: verses, verses: [\"e\u0301\"]}]}]\n"))
	if err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if got, expected := s.Parts[0].Name, "Caf\u00e9"; got != expected {
		t.Fatalf("part name: got %q, expected %q", got, expected)
	}
	if got, expected := s.Measures[0].Events[0].Verses[0], "\u00e9"; got != expected {
		t.Fatalf("verse: got %q, expected %q", got, expected)
	}
}

func TestStaffCounts(t *testing.T) {
	s := &score.Score{Parts: []score.Part{{Staves: 2}, {}}}
	if got, expected := s.StaffCounts(), []int{2, 1}; !reflect.DeepEqual(got, expected) {
		t.Fatalf("staff counts: got %v, expected %v", got, expected)
	}
}

func TestBuildSetsMeasureStyles(t *testing.T) {
	s := &score.Score{
		Parts: []score.Part{{}},
		Measures: []score.Measure{{
			Duration: humdrum.Int(3),
			TimeSig:  humdrum.Int(4),
			Number:   "7a",
			Left:     score.Barline{Style: "heavy-light", Repeat: "forward"},
			Fermatas: []string{"above"},
			Events:   []score.Event{{Kind: score.Note, Token: "2.c"}},
		}},
	}
	g, err := score.Build(s)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	m := g.Measures[0]
	if m.TimeSigDur != humdrum.Int(4) || m.Number != "7a" {
		t.Fatalf("measure fields: got %v %q, expected 4 \"7a\"", m.TimeSigDur, m.Number)
	}
	if expected := (humgrid.BarlineStyle{Visual: humgrid.HeavyLight, Repeat: humgrid.RepeatForward}); m.LeftBarline != expected {
		t.Fatalf("left barline: got %v, expected %v", m.LeftBarline, expected)
	}
	if got := m.Fermata(0); got != humgrid.FermataAbove {
		t.Fatalf("fermata: got %v, expected %v", got, humgrid.FermataAbove)
	}
}

func TestNoteDurationFromRecip(t *testing.T) {
	s := &score.Score{
		Parts: []score.Part{{}},
		Measures: []score.Measure{{
			Duration: humdrum.Int(3),
			Events:   []score.Event{{Kind: score.Note, Token: "2.c"}},
		}},
	}
	expectLines(t, transfer(t, s),
		"**kern",
		"*part1",
		"*staff1",
		"=1-",
		"2.c",
		"=",
		"*-",
	)
}

func TestPartSides(t *testing.T) {
	s := &score.Score{
		Parts: []score.Part{{}},
		Measures: []score.Measure{{
			Duration: humdrum.Int(1),
			Events: []score.Event{
				{Kind: score.Note, Token: "4c"},
				{Kind: score.Dynamics, Token: "p"},
				{Kind: score.Harmony, Token: "C"},
			},
		}},
	}
	expectLines(t, transfer(t, s),
		"**kern\t**dynam\t**mxhm",
		"*part1\t*part1\t*part1",
		"*staff1\t*staff1\t*",
		"=1-\t=1-\t=1-",
		"4c\tp\tC",
		"=\t=\t=",
		"*-\t*-\t*-",
	)
}

func TestBuildErrors(t *testing.T) {
	for _, tc := range []struct {
		name     string
		score    score.Score
		expected error
	}{
		{"no parts", score.Score{}, score.ErrNoParts},
		{"unknown kind", score.Score{
			Parts:    []score.Part{{}},
			Measures: []score.Measure{{Duration: humdrum.Int(1), Events: []score.Event{{Kind: "tuba"}}}},
		}, score.ErrUnknownKind},
		{"dynamics without note", score.Score{
			Parts:    []score.Part{{}},
			Measures: []score.Measure{{Duration: humdrum.Int(1), Events: []score.Event{{Kind: score.Dynamics, Token: "f"}}}},
		}, score.ErrNoNote},
		{"bad barline", score.Score{
			Parts:    []score.Part{{}},
			Measures: []score.Measure{{Duration: humdrum.Int(1), Right: score.Barline{Style: "wavy"}}},
		}, score.ErrStyle},
		{"part out of range", score.Score{
			Parts:    []score.Part{{}},
			Measures: []score.Measure{{Duration: humdrum.Int(1), Events: []score.Event{{Kind: score.Note, Part: 3, Token: "4c"}}}},
		}, humgrid.ErrPartIndex},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := score.Build(&tc.score)
			if !errors.Is(err, tc.expected) {
				t.Fatalf("Build error: got %v, expected %v", err, tc.expected)
			}
		})
	}
}
