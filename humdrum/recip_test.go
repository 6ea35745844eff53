package humdrum_test

import (
	"testing"

	"github.com/vsariola/humgrid/humdrum"
)

func TestRecipToDuration(t *testing.T) {
	cases := []struct {
		recip string
		dur   humdrum.Rat
	}{
		{"4c", humdrum.Int(1)},
		{"8.d", humdrum.NewRat(3, 4)},
		{"2..e", humdrum.NewRat(7, 2)},
		{"1r", humdrum.Int(4)},
		{"0", humdrum.Int(8)},
		{"00.", humdrum.Int(24)},
		{"12g", humdrum.NewRat(1, 3)},
		{"3%2ryy", humdrum.NewRat(8, 3)},
		{"8cq", humdrum.Int(0)},
		{"4c 4e 4g", humdrum.Int(1)},
		{"cc", humdrum.Int(0)},
	}
	for _, c := range cases {
		if got := humdrum.RecipToDuration(c.recip); got != c.dur {
			t.Fatalf("RecipToDuration(%q): got %v, expected %v", c.recip, got, c.dur)
		}
	}
}

func TestDurationToRecip(t *testing.T) {
	cases := []struct {
		dur   humdrum.Rat
		recip string
	}{
		{humdrum.Int(1), "4"},
		{humdrum.Int(4), "1"},
		{humdrum.Int(3), "2."},
		{humdrum.NewRat(7, 2), "2.."},
		{humdrum.NewRat(15, 8), "4..."},
		{humdrum.Int(8), "0"},
		{humdrum.Int(12), "0."},
		{humdrum.NewRat(1, 3), "12"},
		{humdrum.NewRat(5, 4), "6..."},
		{humdrum.NewRat(5, 3), "12%5"},
		{humdrum.Int(0), "q"},
	}
	for _, c := range cases {
		if got := humdrum.DurationToRecip(c.dur); got != c.recip {
			t.Fatalf("DurationToRecip(%v): got %q, expected %q", c.dur, got, c.recip)
		}
	}
}

func TestRecipRoundTrip(t *testing.T) {
	for n := int64(1); n <= 32; n++ {
		for d := int64(1); d <= 16; d++ {
			dur := humdrum.NewRat(n, d)
			recip := humdrum.DurationToRecip(dur)
			if got := humdrum.RecipToDuration(recip); got != dur {
				t.Fatalf("round trip of %v through %q: got %v", dur, recip, got)
			}
		}
	}
}
