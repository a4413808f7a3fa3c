package normals

import (
	"fmt"
	"strconv"
)

// Sentinel is the placeholder printed for days that do not exist in a month.
const Sentinel = "-8888"

var months = [12]string{"JAN", "FEB", "MAR", "APR", "MAY", "JUN", "JUL", "AUG", "SEP", "OCT", "NOV", "DEC"}

// MonthIndex returns the zero-based index of an uppercase three-letter month
// abbreviation ("JAN" -> 0, "DEC" -> 11).
func MonthIndex(abbrev string) (int, bool) {
	for i, m := range months {
		if m == abbrev {
			return i, true
		}
	}
	return -1, false
}

// StripFlag removes at most one trailing completeness flag (A-Z) from a
// token and parses the remainder as a base-10 integer: "630S" -> 630.
func StripFlag(token string) (int, error) {
	digits := token
	if n := len(digits); n > 0 && digits[n-1] >= 'A' && digits[n-1] <= 'Z' {
		digits = digits[:n-1]
	}
	v, err := strconv.Atoi(digits)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrNonNumericToken, token)
	}
	return v, nil
}

// TrimTrailingSentinel drops the trailing run of Sentinel tokens. Interior
// sentinels are kept. The comparison is on raw token text.
func TrimTrailingSentinel(tokens []string) []string {
	n := len(tokens)
	for n > 0 && tokens[n-1] == Sentinel {
		n--
	}
	return tokens[:n]
}

// convertRow trims, strips, and converts the value columns of a data row.
func convertRow(tokens []string) ([]int, error) {
	tokens = TrimTrailingSentinel(tokens)
	values := make([]int, len(tokens))
	for i, tok := range tokens {
		v, err := StripFlag(tok)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

// frequency returns the variable map for (category, frequency), creating
// the category and frequency levels as needed.
func (t Tree) frequency(category, frequency string) Variables {
	freqs, ok := t[category]
	if !ok {
		freqs = make(Frequencies)
		t[category] = freqs
	}
	vars, ok := freqs[frequency]
	if !ok {
		vars = make(Variables)
		freqs[frequency] = vars
	}
	return vars
}

// declareDaily registers an empty twelve-slot daily series unless the
// variable already exists.
func (v Variables) declareDaily(variable string) {
	if _, ok := v[variable]; ok {
		return
	}
	v[variable] = Series{Daily: make([][]int, len(months))}
}

// setMonth stores one month of daily values, replacing any earlier row for
// the same month. It reports false if the variable was never declared.
func (v Variables) setMonth(variable string, month int, values []int) bool {
	s, ok := v[variable]
	if !ok || !s.IsDaily() {
		return false
	}
	s.Daily[month] = values
	return true
}
