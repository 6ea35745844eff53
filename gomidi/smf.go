// Package gomidi renders a score as a Standard MIDI File with
// gitlab.com/gomidi/midi/v2, mostly for listening through what was
// converted.
package gomidi

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/vsariola/humgrid/humdrum"
	"github.com/vsariola/humgrid/score"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// TicksPerQuarter is the resolution of the written files.
const TicksPerQuarter = 480

const velocity = 80

type (
	timedMsg struct {
		tick uint32
		rank int // note offs go before note ons at the same tick
		msg  []byte
	}

	trackBuilder struct {
		name    string
		channel uint8
		msgs    []timedMsg
		tied    map[uint8]int // key -> index of the pending note off
	}
)

func (b *trackBuilder) add(tick uint32, rank int, msg []byte) int {
	b.msgs = append(b.msgs, timedMsg{tick: tick, rank: rank, msg: msg})
	return len(b.msgs) - 1
}

// note adds one **kern subtoken starting at tick. Tie starts and
// continuations keep the note sounding until the token ending the tie.
func (b *trackBuilder) note(sub string, tick, length uint32) {
	key, ok := KernPitch(sub)
	if !ok {
		return
	}
	end := tick + length
	if i, ok := b.tied[key]; ok && strings.ContainsAny(sub, "_]") {
		b.msgs[i].tick = end
		if strings.Contains(sub, "]") {
			delete(b.tied, key)
		}
		return
	}
	b.add(tick, 1, midi.NoteOn(b.channel, key, velocity))
	i := b.add(end, 0, midi.NoteOff(b.channel, key))
	if strings.Contains(sub, "[") {
		b.tied[key] = i
	}
}

func (b *trackBuilder) track() smf.Track {
	slices.SortStableFunc(b.msgs, func(x, y timedMsg) int {
		if c := cmp.Compare(x.tick, y.tick); c != 0 {
			return c
		}
		return cmp.Compare(x.rank, y.rank)
	})
	var tr smf.Track
	if b.name != "" {
		tr.Add(0, smf.MetaTrackSequenceName(b.name))
	}
	var last uint32
	for _, m := range b.msgs {
		tr.Add(m.tick-last, m.msg)
		last = m.tick
	}
	tr.Close(0)
	return tr
}

func ticks(r humdrum.Rat) uint32 {
	if r.Sign() <= 0 {
		return 0
	}
	return uint32(r.Num() * TicksPerQuarter / r.Den())
}

// WriteScore writes s as a format 1 file: a conductor track with tempos and
// meters, then one track per staff on its own channel.
func WriteScore(w io.Writer, s *score.Score) error {
	if len(s.Parts) == 0 {
		return score.ErrNoParts
	}
	conductor := &trackBuilder{name: s.Title}
	staves := map[[2]int]*trackBuilder{}
	var order []*trackBuilder
	for p, part := range s.Parts {
		n := max(part.Staves, 1)
		for st := 0; st < n; st++ {
			name := part.Name
			if n > 1 && name != "" {
				name += " " + strconv.Itoa(st+1)
			}
			b := &trackBuilder{name: name, channel: uint8(len(order) % 16), tied: map[uint8]int{}}
			staves[[2]int{p, st}] = b
			order = append(order, b)
		}
	}
	var start humdrum.Rat
	for mi, m := range s.Measures {
		for _, e := range m.Events {
			tick := ticks(start.Add(e.Time))
			switch e.Kind {
			case score.Tempo:
				bpm, err := strconv.ParseFloat(strings.TrimPrefix(e.Token, "*MM"), 64)
				if err != nil || bpm <= 0 {
					return fmt.Errorf("measure %d: tempo %q is not a number", mi, e.Token)
				}
				conductor.add(tick, 0, smf.MetaTempo(bpm))
			case score.Time:
				if num, den, ok := meter(e.Token); ok {
					conductor.add(tick, 0, smf.MetaTimeSig(num, den, 24, 8))
				}
			case score.Note:
				b := staves[[2]int{e.Part, e.Staff}]
				if b == nil {
					return fmt.Errorf("measure %d: note on part %d staff %d does not exist", mi, e.Part, e.Staff)
				}
				dur := e.Duration
				if dur.IsZero() {
					dur = humdrum.RecipToDuration(e.Token)
				}
				for _, sub := range strings.Fields(e.Token) {
					b.note(sub, tick, ticks(dur))
				}
			}
		}
		start = start.Add(m.Duration)
	}
	file := smf.New()
	file.TimeFormat = smf.MetricTicks(TicksPerQuarter)
	if err := file.Add(conductor.track()); err != nil {
		return fmt.Errorf("adding conductor track failed: %w", err)
	}
	for _, b := range order {
		if err := file.Add(b.track()); err != nil {
			return fmt.Errorf("adding track %q failed: %w", b.name, err)
		}
	}
	if _, err := file.WriteTo(w); err != nil {
		return fmt.Errorf("writing midi file failed: %w", err)
	}
	return nil
}

func meter(token string) (num, den uint8, ok bool) {
	n, d, found := strings.Cut(strings.TrimPrefix(token, "*M"), "/")
	if !found {
		return 0, 0, false
	}
	a, err1 := strconv.ParseUint(n, 10, 8)
	b, err2 := strconv.ParseUint(d, 10, 8)
	if err1 != nil || err2 != nil || a == 0 || b == 0 {
		return 0, 0, false
	}
	return uint8(a), uint8(b), true
}

// KernPitch returns the MIDI key of a **kern note token: "c" is middle C,
// every repeated lowercase letter is an octave up and every uppercase one an
// octave down from C3. Sharps are "#" and flats "-". Rests and tokens
// without a pitch give false.
func KernPitch(token string) (uint8, bool) {
	if strings.Contains(token, "r") {
		return 0, false
	}
	var letter rune
	count := 0
	alter := 0
	for _, c := range token {
		switch {
		case c >= 'a' && c <= 'g' || c >= 'A' && c <= 'G':
			if letter != 0 && c != letter {
				return 0, false
			}
			letter = c
			count++
		case c == '#':
			alter++
		case c == '-':
			alter--
		}
	}
	if letter == 0 {
		return 0, false
	}
	steps := map[rune]int{'c': 0, 'd': 2, 'e': 4, 'f': 5, 'g': 7, 'a': 9, 'b': 11}
	var octave int
	if letter >= 'a' {
		octave = 3 + count
	} else {
		octave = 4 - count
		letter += 'a' - 'A'
	}
	key := (octave+1)*12 + steps[letter] + alter
	if key < 0 || key > 127 {
		return 0, false
	}
	return uint8(key), true
}
