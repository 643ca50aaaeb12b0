package uci_test

import (
	"reflect"
	"testing"

	"github.com/voxmate/voxmate/internal/engine/uci"
)

func TestParseInfo(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		line string
		want uci.Info
		ok   bool
	}{
		{
			name: "multipv cp line",
			line: "info depth 15 seldepth 21 multipv 2 score cp 34 nodes 123456 nps 1000000 time 120 pv e2e4 e7e5 g1f3",
			want: uci.Info{Depth: 15, MultiPV: 2, ScoreCP: 34, PV: []string{"e2e4", "e7e5", "g1f3"}},
			ok:   true,
		},
		{
			name: "mate score",
			line: "info depth 12 multipv 1 score mate 3 pv d1h5",
			want: uci.Info{Depth: 12, MultiPV: 1, Mate: 3, HasMate: true, PV: []string{"d1h5"}},
			ok:   true,
		},
		{
			name: "negative mate",
			line: "info depth 10 multipv 1 score mate -2 pv e8e7",
			want: uci.Info{Depth: 10, MultiPV: 1, Mate: -2, HasMate: true, PV: []string{"e8e7"}},
			ok:   true,
		},
		{
			name: "multipv defaults to one",
			line: "info depth 8 score cp -15 pv g8f6",
			want: uci.Info{Depth: 8, MultiPV: 1, ScoreCP: -15, PV: []string{"g8f6"}},
			ok:   true,
		},
		{
			name: "currmove progress line",
			line: "info depth 20 currmove e2e4 currmovenumber 1",
			ok:   false,
		},
		{
			name: "no pv",
			line: "info depth 5 score cp 10",
			ok:   false,
		},
		{
			name: "not an info line",
			line: "bestmove e2e4 ponder e7e5",
			ok:   false,
		},
		{
			name: "lowerbound annotation between score and pv",
			line: "info depth 14 multipv 1 score cp 55 lowerbound nodes 999 pv d2d4 d7d5",
			want: uci.Info{Depth: 14, MultiPV: 1, ScoreCP: 55, PV: []string{"d2d4", "d7d5"}},
			ok:   true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, ok := uci.ParseInfo(tc.line)
			if ok != tc.ok {
				t.Fatalf("ParseInfo(%q) ok = %v, want %v", tc.line, ok, tc.ok)
			}
			if ok && !reflect.DeepEqual(got, tc.want) {
				t.Errorf("ParseInfo(%q) = %+v, want %+v", tc.line, got, tc.want)
			}
		})
	}
}
