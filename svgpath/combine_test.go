package svgpath

import (
	"reflect"
	"testing"
)

func TestCombine(t *testing.T) {
	for _, test := range []struct {
		in, expected []string
	}{
		{nil, []string{}},
		{
			[]string{"M0 0 L1 0", "M1 0 L1 1", "M1 1 L0 1"},
			[]string{"M0 0 L1 0 L1 1 L0 1"},
		},
		{ // end to end: reversed
			[]string{"M0 0 L1 0", "M1 1 L1 0"},
			[]string{"M0 0 L1 0 L1 1"},
		},
		{ // prepended
			[]string{"M1 0 L2 0", "M0 0 L1 0"},
			[]string{"M0 0 L1 0 L2 0"},
		},
		{ // start to start
			[]string{"M1 0 L2 0", "M1 0 L1 5"},
			[]string{"M1 5 L1 0 L2 0"},
		},
		{ // closed paths are kept
			[]string{"M0 0 L1 0 L1 1 Z", "M0 0 L5 5"},
			[]string{"M0 0 L1 0 L1 1 Z", "M0 0 L5 5"},
		},
		{ // order of the first member
			[]string{"M10 10 L20 20", "M0 0 L1 0", "M20 20 L30 30"},
			[]string{"M10 10 L20 20 L30 30", "M0 0 L1 0"},
		},
		{ // 1/64 unit snapping
			[]string{"M0 0 L1 0", "M1.001 0 L2 0"},
			[]string{"M0 0 L1 0 L2 0"},
		},
		{
			[]string{"M0 0 L1 0", "M1.1 0 L2 0"},
			[]string{"M0 0 L1 0", "M1.1 0 L2 0"},
		},
		{ // curves
			[]string{"M0 0 C1 1 2 1 3 0", "M3 0 Q4 -1 5 0"},
			[]string{"M0 0 C1 1 2 1 3 0 Q4 -1 5 0"},
		},
		{
			[]string{"M0 0 L1 0", "M4 0 C3 1 2 1 1 0"},
			[]string{"M0 0 L1 0 C2 1 3 1 4 0"},
		},
		{ // several subpaths are kept as is
			[]string{"M0 0 L1 0 M5 5 L6 6", "M1 0 L2 0"},
			[]string{"M0 0 L1 0 M5 5 L6 6", "M1 0 L2 0"},
		},
		{ // unmerged paths are not reformatted
			[]string{"M 0,0 L 1,0", "m 5 5 l 1 1"},
			[]string{"M 0,0 L 1,0", "m 5 5 l 1 1"},
		},
		{ // joined into a loop, still one path
			[]string{"M0 0 L1 0", "M1 0 L1 1", "M1 1 L0 0"},
			[]string{"M0 0 L1 0 L1 1 L0 0"},
		},
	} {
		out, err := Converter{}.Combine(test.in)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(out, test.expected) {
			t.Errorf("%v: expected %v, got %v", test.in, test.expected, out)
		}
		if len(out) > len(test.in) {
			t.Errorf("%v: combining must not add paths", test.in)
		}
	}
}

func TestCombineInvalid(t *testing.T) {
	if _, err := (Converter{}).Combine([]string{"M0 0 L1 0", "not a path"}); err == nil {
		t.Fatal("expected error for invalid path")
	}
}
