package gomidi_test

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/vsariola/humgrid/gomidi"
	"github.com/vsariola/humgrid/humdrum"
	"github.com/vsariola/humgrid/score"
	"gitlab.com/gomidi/midi/v2/smf"
)

func TestKernPitch(t *testing.T) {
	for token, expected := range map[string]uint8{
		"4c":   60,
		"4C":   48,
		"8cc":  72,
		"2CC":  36,
		"4a":   69,
		"4f#":  66,
		"4b-":  70,
		"4e--": 62,
		"4dL":  62,
	} {
		got, ok := gomidi.KernPitch(token)
		if !ok || got != expected {
			t.Fatalf("KernPitch(%q): got %v %v, expected %v", token, got, ok, expected)
		}
	}
	for _, token := range []string{"4r", "4ryy", ".", "*clefG2", "4cd"} {
		if _, ok := gomidi.KernPitch(token); ok {
			t.Fatalf("KernPitch(%q) should fail", token)
		}
	}
}

type noteOn struct {
	tick    uint32
	channel uint8
	key     uint8
}

func TestWriteScore(t *testing.T) {
	s := &score.Score{
		Parts: []score.Part{{Name: "Piano", Staves: 2}},
		Measures: []score.Measure{
			{
				Duration: humdrum.Int(4),
				Events: []score.Event{
					{Kind: score.Tempo, Token: "*MM120"},
					{Kind: score.Time, Token: "*M4/4"},
					{Kind: score.Note, Token: "2c 2e"},
					{Kind: score.Note, Time: humdrum.Int(2), Token: "2[g"},
					{Kind: score.Note, Staff: 1, Token: "1C"},
				},
			},
			{
				Duration: humdrum.Int(4),
				Events: []score.Event{
					{Kind: score.Note, Token: "4g]"},
					{Kind: score.Note, Time: humdrum.Int(1), Token: "4r"},
					{Kind: score.Note, Time: humdrum.Int(2), Token: "2d"},
				},
			},
		},
	}
	var buf bytes.Buffer
	if err := gomidi.WriteScore(&buf, s); err != nil {
		t.Fatalf("WriteScore failed: %v", err)
	}
	file, err := smf.ReadFrom(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("reading back the written file failed: %v", err)
	}
	if got, expected := len(file.Tracks), 3; got != expected {
		t.Fatalf("track count: got %v, expected %v", got, expected)
	}
	var ons []noteOn
	var bpm float64
	for _, track := range file.Tracks {
		var tick uint32
		for _, ev := range track {
			tick += ev.Delta
			var ch, key, vel uint8
			if ev.Message.GetNoteOn(&ch, &key, &vel) {
				ons = append(ons, noteOn{tick, ch, key})
			}
			ev.Message.GetMetaTempo(&bpm)
		}
	}
	if bpm != 120 {
		t.Fatalf("tempo: got %v, expected 120", bpm)
	}
	expected := []noteOn{
		{0, 0, 60}, {0, 0, 64}, {960, 0, 67}, {2880, 0, 62},
		{0, 1, 48},
	}
	if !reflect.DeepEqual(ons, expected) {
		t.Fatalf("note ons: got %v, expected %v", ons, expected)
	}
}

func TestWriteScoreNeedsParts(t *testing.T) {
	if err := gomidi.WriteScore(&bytes.Buffer{}, &score.Score{}); err == nil {
		t.Fatalf("WriteScore of a score without parts should fail")
	}
}
