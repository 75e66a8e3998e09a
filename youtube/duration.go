package youtube

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

var errBadDuration = errors.New("malformed ISO-8601 duration")

// ParseISODuration parses the subset of ISO-8601 durations the Data API
// emits for videos (PT#H#M#S, optionally P#DT...). An empty string parses to
// zero; live streams report P0D which also parses to zero.
func ParseISODuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	rest, ok := strings.CutPrefix(s, "P")
	if !ok {
		return 0, errBadDuration
	}

	var total time.Duration
	inTime := false
	number := ""
	for _, r := range rest {
		switch {
		case r >= '0' && r <= '9':
			number += string(r)
		case r == 'T':
			if inTime || number != "" {
				return 0, errBadDuration
			}
			inTime = true
		default:
			if number == "" {
				return 0, errBadDuration
			}
			n, err := strconv.Atoi(number)
			if err != nil {
				return 0, errBadDuration
			}
			number = ""
			unit, err := unitFor(r, inTime)
			if err != nil {
				return 0, err
			}
			total += time.Duration(n) * unit
		}
	}
	if number != "" {
		return 0, errBadDuration
	}
	return total, nil
}

func unitFor(designator rune, inTime bool) (time.Duration, error) {
	switch designator {
	case 'D':
		if inTime {
			return 0, errBadDuration
		}
		return 24 * time.Hour, nil
	case 'H':
		if !inTime {
			return 0, errBadDuration
		}
		return time.Hour, nil
	case 'M':
		if !inTime {
			return 0, errBadDuration
		}
		return time.Minute, nil
	case 'S':
		if !inTime {
			return 0, errBadDuration
		}
		return time.Second, nil
	}
	return 0, errBadDuration
}
