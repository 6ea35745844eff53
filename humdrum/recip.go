package humdrum

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	ratioRecipRe = regexp.MustCompile(`(\d+)%(\d+)`)
	digitsRe     = regexp.MustCompile(`\d+`)
)

// RecipToDuration converts a recip (the rhythm part of a **kern token) to a
// duration in quarter notes. Grace notes and tokens without a rhythm have
// zero duration. Only the first space separated subtoken of a chord is used.
func RecipToDuration(recip string) Rat {
	if strings.Contains(recip, "q") {
		return Rat{}
	}
	sub, _, _ := strings.Cut(recip, " ")
	var whole Rat
	if m := ratioRecipRe.FindStringSubmatch(sub); m != nil {
		den, _ := strconv.ParseInt(m[1], 10, 64)
		num, _ := strconv.ParseInt(m[2], 10, 64)
		if den == 0 {
			return Rat{}
		}
		whole = NewRat(num, den)
	} else {
		digits := digitsRe.FindString(sub)
		if digits == "" {
			return Rat{}
		}
		if digits[0] == '0' {
			// 0 is a breve, 00 a long, 000 a maxima
			whole = Int(1 << len(digits))
		} else {
			n, err := strconv.ParseInt(digits, 10, 64)
			if err != nil || n == 0 {
				return Rat{}
			}
			whole = NewRat(1, n)
		}
	}
	if dots := strings.Count(sub, "."); dots > 0 {
		p := int64(1) << dots
		whole = whole.Mul(NewRat(2*p-1, p))
	}
	return whole.Mul(Int(4))
}

var longRecips = map[Rat]string{
	Int(2):  "0",
	Int(3):  "0.",
	Int(4):  "00",
	Int(6):  "00.",
	Int(8):  "000",
	Int(12): "000.",
}

// DurationToRecip converts a duration in quarter notes to a recip string,
// using up to three augmentation dots before falling back to the n%m form.
// A zero duration gives "q".
func DurationToRecip(dur Rat) string {
	if dur.IsZero() {
		return "q"
	}
	d := dur.Div(Int(4))
	if d.Num() == 1 {
		return strconv.FormatInt(d.Den(), 10)
	}
	if s, ok := longRecips[d]; ok {
		return s
	}
	for dots, f := range []Rat{NewRat(2, 3), NewRat(4, 7), NewRat(8, 15)} {
		if u := d.Mul(f); u.Num() == 1 {
			return strconv.FormatInt(u.Den(), 10) + strings.Repeat(".", dots+1)
		}
	}
	return strconv.FormatInt(d.Den(), 10) + "%" + strconv.FormatInt(d.Num(), 10)
}
