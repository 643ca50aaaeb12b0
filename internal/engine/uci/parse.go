package uci

import (
	"strconv"
	"strings"
)

// Info is one parsed "info" line from the engine. Only lines carrying a
// score and a principal variation are of interest; everything else
// (currmove progress, hash stats) is skipped.
type Info struct {
	Depth   int
	MultiPV int
	ScoreCP int
	Mate    int // signed moves to mate; meaningful only when HasMate
	HasMate bool
	PV      []string
}

// ParseInfo parses a UCI info line. ok is false for lines that are not
// scored PV reports. Engines omit the multipv token when MultiPV is 1;
// that defaults to line 1.
func ParseInfo(line string) (Info, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 || fields[0] != "info" {
		return Info{}, false
	}

	info := Info{MultiPV: 1}
	var scored bool
	for i := 1; i < len(fields); i++ {
		switch fields[i] {
		case "depth":
			if i+1 < len(fields) {
				info.Depth, _ = strconv.Atoi(fields[i+1])
				i++
			}
		case "multipv":
			if i+1 < len(fields) {
				info.MultiPV, _ = strconv.Atoi(fields[i+1])
				i++
			}
		case "score":
			if i+2 < len(fields) {
				switch fields[i+1] {
				case "cp":
					info.ScoreCP, _ = strconv.Atoi(fields[i+2])
					scored = true
				case "mate":
					info.Mate, _ = strconv.Atoi(fields[i+2])
					info.HasMate = true
					scored = true
				}
				i += 2
			}
		case "pv":
			info.PV = fields[i+1:]
			i = len(fields)
		}
	}

	if !scored || len(info.PV) == 0 {
		return Info{}, false
	}
	return info, true
}
