package humgrid_test

import (
	"errors"
	"math/rand"
	"reflect"
	"testing"

	"github.com/vsariola/humgrid"
	"github.com/vsariola/humgrid/humdrum"
)

func sliceTypes(m *humgrid.Measure) []humgrid.SliceType {
	var ret []humgrid.SliceType
	for _, s := range m.Slices {
		ret = append(ret, s.Type)
	}
	return ret
}

func TestDataTokensInTimeOrder(t *testing.T) {
	counts := []int{1}
	g := humgrid.New()
	m := newMeasure(g, 2)
	addNote(t, m, "4c", q(0), 0, 0, 0, counts)
	addNote(t, m, "4d", q(1), 0, 0, 0, counts)
	if len(m.Slices) != 2 || m.Slices[0].Timestamp != q(0) || m.Slices[1].Timestamp != q(1) {
		t.Fatalf("got slices %v, expected notes at 0 and 1", sliceTypes(m))
	}
	transfer(t, g)
	var notes []*humgrid.Slice
	for _, s := range m.Slices {
		if s.IsNoteSlice() {
			notes = append(notes, s)
		}
	}
	if notes[0].Duration != q(1) {
		t.Fatalf("first slice duration: got %v, expected 1", notes[0].Duration)
	}
}

func TestSameTimestampRankOrder(t *testing.T) {
	counts := []int{2}
	m := humgrid.New().AppendMeasure()
	addNote(t, m, "4c", q(0), 0, 0, 0, counts)
	if _, err := m.AddKeySigToken("*k[f#]", q(0), 0, 0, 0, counts); err != nil {
		t.Fatalf("AddKeySigToken failed: %v", err)
	}
	if _, err := m.AddClefToken("*clefG2", q(0), 0, 0, 0, counts); err != nil {
		t.Fatalf("AddClefToken failed: %v", err)
	}
	clef, err := m.AddClefToken("*clefF4", q(0), 0, 1, 0, counts)
	if err != nil {
		t.Fatalf("AddClefToken failed: %v", err)
	}
	if _, err := m.AddTimeSigToken("*M3/4", q(0), 0, 0, 0, counts); err != nil {
		t.Fatalf("AddTimeSigToken failed: %v", err)
	}
	expected := []humgrid.SliceType{humgrid.Clefs, humgrid.KeySigs, humgrid.TimeSigs, humgrid.Notes}
	if got := sliceTypes(m); !reflect.DeepEqual(got, expected) {
		t.Fatalf("got %v, expected %v", got, expected)
	}
	if clef != m.Slices[0] || clef.Staff(0, 1).Voice(0).Text() != "*clefF4" {
		t.Fatalf("second clef should share the clef slice")
	}
}

func TestOutOfOrderInsertionKeepsTimeOrder(t *testing.T) {
	counts := []int{1}
	m := humgrid.New().AppendMeasure()
	for _, ts := range []int64{3, 0, 2, 1, 5, 4, 2} {
		addNote(t, m, "4c", q(ts), 0, 0, 0, counts)
		if _, err := m.AddTempoToken("*MM100", q(ts), 0, 0, 0, counts); err != nil {
			t.Fatalf("AddTempoToken failed: %v", err)
		}
	}
	m.AddGlobalComment("!!late", q(1))
	for i := 1; i < len(m.Slices); i++ {
		if m.Slices[i].Timestamp.Less(m.Slices[i-1].Timestamp) {
			t.Fatalf("slice %d at %v comes after %v", i, m.Slices[i].Timestamp, m.Slices[i-1].Timestamp)
		}
	}
	if len(m.Slices) != 13 {
		t.Fatalf("got %d slices, expected 13", len(m.Slices))
	}
}

func TestGraceNoteOrdinals(t *testing.T) {
	counts := []int{1}
	m := humgrid.New().AppendMeasure()
	note := addNote(t, m, "4c", q(0), 0, 0, 0, counts)
	first, err := m.AddGraceToken("8dq", q(0), 0, 0, 0, counts, 1)
	if err != nil {
		t.Fatalf("AddGraceToken failed: %v", err)
	}
	second, err := m.AddGraceToken("8eq", q(0), 0, 0, 0, counts, 2)
	if err != nil {
		t.Fatalf("AddGraceToken failed: %v", err)
	}
	if expected := []*humgrid.Slice{second, first, note}; !reflect.DeepEqual(m.Slices, expected) {
		t.Fatalf("got %v, expected [grace 2, grace 1, note]", sliceTypes(m))
	}
	again, err := m.AddGraceToken("8g#q", q(0), 0, 0, 0, counts, 1)
	if err != nil || again != first {
		t.Fatalf("grace number 1 should reuse the existing slice")
	}
	if _, err := m.AddGraceToken("8aq", q(0), 0, 0, 0, counts, 0); !errors.Is(err, humgrid.ErrGraceNumber) {
		t.Fatalf("got error %v, expected %v", err, humgrid.ErrGraceNumber)
	}
}

func TestGraceNoteAfterEarlierNote(t *testing.T) {
	counts := []int{1}
	m := humgrid.New().AppendMeasure()
	addNote(t, m, "4c", q(0), 0, 0, 0, counts)
	addNote(t, m, "4d", q(1), 0, 0, 0, counts)
	grace, err := m.AddGraceToken("16eq", q(1), 0, 0, 0, counts, 1)
	if err != nil {
		t.Fatalf("AddGraceToken failed: %v", err)
	}
	if m.Slices[1] != grace {
		t.Fatalf("got %v, expected the grace slice between the notes", sliceTypes(m))
	}
}

func TestGlobalCommentsAreDeduplicated(t *testing.T) {
	counts := []int{1}
	m := humgrid.New().AppendMeasure()
	addNote(t, m, "4c", q(0), 0, 0, 0, counts)
	addNote(t, m, "4d", q(1), 0, 0, 0, counts)
	a := m.AddGlobalComment("!!x", q(1))
	b := m.AddGlobalComment("!!x", q(1))
	if a != b || len(m.Slices) != 3 || m.Slices[1] != a {
		t.Fatalf("got %v, expected one comment before the second note", sliceTypes(m))
	}
}

func TestGlobalCommentsKeepOrderAndDeduplicate(t *testing.T) {
	counts := []int{1}
	m := humgrid.New().AppendMeasure()
	note := addNote(t, m, "1c", q(0), 0, 0, 0, counts)
	a := m.AddGlobalComment("!!A", q(0))
	b := m.AddGlobalComment("!!B", q(0))
	if again := m.AddGlobalComment("!!A", q(0)); again != a {
		t.Fatalf("repeated comment should return the existing slice")
	}
	if expected := []*humgrid.Slice{a, b, note}; !reflect.DeepEqual(m.Slices, expected) {
		t.Fatalf("got %v, expected [!!A !!B note]", sliceTypes(m))
	}
}

func TestRandomInsertionKeepsTimeOrder(t *testing.T) {
	counts := []int{2}
	type op func(m *humgrid.Measure, ts humdrum.Rat) error
	ops := []op{
		func(m *humgrid.Measure, ts humdrum.Rat) error {
			_, err := m.AddDataToken("4c", ts, 0, 0, 0, counts, q(1))
			return err
		},
		func(m *humgrid.Measure, ts humdrum.Rat) error {
			_, err := m.AddDataToken("4e", ts, 0, 1, 0, counts, q(1))
			return err
		},
		func(m *humgrid.Measure, ts humdrum.Rat) error {
			_, err := m.AddClefToken("*clefG2", ts, 0, 0, 0, counts)
			return err
		},
		func(m *humgrid.Measure, ts humdrum.Rat) error {
			_, err := m.AddTempoToken("*MM80", ts, 0, 1, 0, counts)
			return err
		},
		func(m *humgrid.Measure, ts humdrum.Rat) error {
			_, err := m.AddKeySigToken("*k[]", ts, 0, 0, 0, counts)
			return err
		},
		func(m *humgrid.Measure, ts humdrum.Rat) error {
			m.AddGlobalComment("!!c", ts)
			return nil
		},
	}
	r := rand.New(rand.NewSource(1))
	for round := 0; round < 50; round++ {
		m := humgrid.New().AppendMeasure()
		for i := 0; i < 40; i++ {
			ts := humdrum.NewRat(int64(r.Intn(16)), 2)
			if err := ops[r.Intn(len(ops))](m, ts); err != nil {
				t.Fatalf("round %d: adding at %v failed: %v", round, ts, err)
			}
		}
		for i := 1; i < len(m.Slices); i++ {
			prev, cur := m.Slices[i-1], m.Slices[i]
			if cur.Timestamp.Less(prev.Timestamp) {
				t.Fatalf("round %d: slice %d at %v comes after %v", round, i, cur.Timestamp, prev.Timestamp)
			}
			if cur.Timestamp == prev.Timestamp && cur.Type <= prev.Type {
				t.Fatalf("round %d: slice %d at %v: got %v after %v, expected rising types", round, i, cur.Timestamp, cur.Type, prev.Type)
			}
		}
	}
}

func TestLayoutParameters(t *testing.T) {
	counts := []int{1}
	g := humgrid.New()
	m := newMeasure(g, 2)
	addNote(t, m, "4c", q(0), 0, 0, 0, counts)
	note := addNote(t, m, "4d", q(1), 0, 0, 0, counts)
	addNote(t, m, "4f", q(1), 0, 0, 1, counts)
	if err := m.AddLayoutParameter(note, 0, 0, 1, "!LO:N:vis=1"); err != nil {
		t.Fatalf("AddLayoutParameter failed: %v", err)
	}
	if err := m.AddLayoutParameter(note, 0, 0, 0, "!LO:N:t=a"); err != nil {
		t.Fatalf("AddLayoutParameter failed: %v", err)
	}
	if expected := []humgrid.SliceType{humgrid.Notes, humgrid.Layouts, humgrid.Notes}; !reflect.DeepEqual(sliceTypes(m), expected) {
		t.Fatalf("got %v, expected %v", sliceTypes(m), expected)
	}
	other := humgrid.NewSlice(q(0), humgrid.Notes, counts)
	if err := m.AddLayoutParameter(other, 0, 0, 0, "!LO:N:t=b"); !errors.Is(err, humgrid.ErrAnchorNotFound) {
		t.Fatalf("got error %v, expected %v", err, humgrid.ErrAnchorNotFound)
	}
	expectLines(t, transfer(t, g),
		"**kern",
		"*part1",
		"*staff1",
		"=1-",
		"4c",
		"*^",
		"!LO:N:t=a\t!LO:N:vis=1",
		"4d\t4f",
		"*v\t*v",
		"=",
		"*-",
	)
}

func TestVerseLabelsAndDynamicsLayout(t *testing.T) {
	counts := []int{1}
	g := humgrid.New()
	g.ReportVerseCount(0, 0, 1)
	g.SetDynamicsPresent(0)
	m := newMeasure(g, 1)
	note := addNote(t, m, "4c", q(0), 0, 0, 0, counts)
	if err := m.AddVerseLabels(note, 0, 0, []*humdrum.Token{humdrum.NewToken("*v1")}); err != nil {
		t.Fatalf("AddVerseLabels failed: %v", err)
	}
	if err := m.AddDynamicsLayoutParameters(note, 0, "!LO:DY:b"); err != nil {
		t.Fatalf("AddDynamicsLayoutParameters failed: %v", err)
	}
	expected := []humgrid.SliceType{humgrid.VerseLabels, humgrid.Layouts, humgrid.Notes}
	if got := sliceTypes(m); !reflect.DeepEqual(got, expected) {
		t.Fatalf("got %v, expected %v", got, expected)
	}
}

func TestAddTokenChecksIndices(t *testing.T) {
	s := humgrid.NewSlice(q(0), humgrid.Notes, []int{1})
	if _, err := s.AddToken("4c", 3, 0, 0); !errors.Is(err, humgrid.ErrPartIndex) {
		t.Fatalf("got error %v, expected %v", err, humgrid.ErrPartIndex)
	}
	if _, err := s.AddToken("4c", 0, -1, 0); !errors.Is(err, humgrid.ErrStaffIndex) {
		t.Fatalf("got error %v, expected %v", err, humgrid.ErrStaffIndex)
	}
	if _, err := s.AddToken("4c", 0, 2, 1); err != nil {
		t.Fatalf("AddToken failed: %v", err)
	}
	if got := s.VoiceCount(0, 2); got != 2 {
		t.Fatalf("voice count: got %d, expected 2", got)
	}
}

func TestSetNullTokenLayer(t *testing.T) {
	var staff humgrid.Staff
	if err := staff.SetNullTokenLayer(2, humgrid.Notes, q(1)); err != nil {
		t.Fatalf("SetNullTokenLayer failed: %v", err)
	}
	if staff.Voice(0) != nil || staff.Voice(2).Text() != "." {
		t.Fatalf("got voices %v, expected two holes then a null", staff.Voices)
	}
	if err := staff.SetNullTokenLayer(2, humgrid.Notes, q(1)); err != nil {
		t.Fatalf("repeated null: %v", err)
	}
	staff.Voices[2].Token = humdrum.NewToken("4c")
	if err := staff.SetNullTokenLayer(2, humgrid.Notes, q(1)); !errors.Is(err, humgrid.ErrTokenConflict) {
		t.Fatalf("got error %v, expected %v", err, humgrid.ErrTokenConflict)
	}
	if err := staff.SetNullTokenLayer(5, humgrid.GlobalComments, q(1)); err != nil || len(staff.Voices) != 3 {
		t.Fatalf("records without spines should be left alone")
	}
}

func TestRemoveRedundantClefChanges(t *testing.T) {
	counts := []int{1}
	g := humgrid.New()
	m := newMeasure(g, 2)
	if _, err := m.AddClefToken("*clefG2", q(0), 0, 0, 0, counts); err != nil {
		t.Fatalf("AddClefToken failed: %v", err)
	}
	addNote(t, m, "4c", q(0), 0, 0, 0, counts)
	again, err := m.AddClefToken("*clefG2", q(1), 0, 0, 0, counts)
	if err != nil {
		t.Fatalf("AddClefToken failed: %v", err)
	}
	addNote(t, m, "4d", q(1), 0, 0, 0, counts)
	g.RemoveRedundantClefChanges()
	if !again.IsInvalid() || !again.Duration.IsZero() || again.Staff(0, 0).Voice(0).Text() != "*" {
		t.Fatalf("repeated clef should be nulled and invalidated")
	}
	if m.Slices[0].Type != humgrid.Clefs {
		t.Fatalf("first clef should stay")
	}
	before := sliceTypes(m)
	g.RemoveRedundantClefChanges()
	if after := sliceTypes(m); !reflect.DeepEqual(before, after) {
		t.Fatalf("second pass changed %v to %v", before, after)
	}
	g.RemoveRedundantClefs = true
	expectLines(t, transfer(t, g),
		"**kern",
		"*part1",
		"*staff1",
		"*clefG2",
		"=1-",
		"4c",
		"4d",
		"=",
		"*-",
	)
}

func TestMoveLeadingClefs(t *testing.T) {
	counts := []int{1}
	g := humgrid.New()
	g.MoveLeadingClefs = true
	addNote(t, newMeasure(g, 1), "4c", q(0), 0, 0, 0, counts)
	m := newMeasure(g, 1)
	if _, err := m.AddClefToken("*clefF4", q(1), 0, 0, 0, counts); err != nil {
		t.Fatalf("AddClefToken failed: %v", err)
	}
	addNote(t, m, "4C", q(1), 0, 0, 0, counts)
	expectLines(t, transfer(t, g),
		"**kern",
		"*part1",
		"*staff1",
		"=1-",
		"4c",
		"*clefF4",
		"=2",
		"4C",
		"=",
		"*-",
	)
}

func TestCreateMatchedVoiceCount(t *testing.T) {
	staff := &humgrid.Staff{}
	if err := staff.CreateMatchedVoiceCount(3, "*"); err != nil {
		t.Fatalf("CreateMatchedVoiceCount failed: %v", err)
	}
	var texts []string
	for _, v := range staff.Voices {
		texts = append(texts, v.Text())
	}
	if expected := []string{"*", "*", "*"}; !reflect.DeepEqual(texts, expected) {
		t.Fatalf("voices: got %v, expected %v", texts, expected)
	}
	if err := staff.CreateMatchedVoiceCount(1, "*"); !errors.Is(err, humgrid.ErrMatchedVoiceCount) {
		t.Fatalf("second call: got %v, expected %v", err, humgrid.ErrMatchedVoiceCount)
	}
}
