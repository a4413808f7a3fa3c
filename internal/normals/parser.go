package normals

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"
)

var (
	// metadataRe matches "<key>:<value>" header lines, e.g.
	// "Station Name: EXAMPLE STATION". Keys start with a letter.
	metadataRe = regexp.MustCompile(`^([A-Za-z][^:]*):([^:]+)$`)

	// categoryRe matches category headers such as "Temperature-Related Normals".
	categoryRe = regexp.MustCompile(`^(.*)\s+Normals\s*$`)

	// frequencyRe matches any line starting with a capitalized word ending in
	// "ly": "Monthly", "Daily", and whatever else the file declares.
	frequencyRe = regexp.MustCompile(`^([A-Z]\S+ly)\b`)
)

// Column counts of the data row shapes.
const (
	monthlyColumns     = 13 // variable + 12 months
	dailyHeaderColumns = 33 // variable + month + 31 days
	dailyMonthColumns  = 32 // month + 31 days
)

// maxLineSize bounds a single line read by Parse. Daily rows are well under
// 1 KiB; the headroom tolerates padded files.
const maxLineSize = 64 * 1024

// parseContext is the section state inherited by lines that carry no header.
type parseContext struct {
	category  string
	frequency string
	variable  string
	line      int
}

// Parser classifies station report lines one at a time and accumulates the
// result. A Parser is single-use and not safe for concurrent use.
type Parser struct {
	station *Station
	ctx     parseContext
	err     error
}

// NewParser returns a Parser with empty metadata and normals.
func NewParser() *Parser {
	return &Parser{station: newStation()}
}

// Parse reads a station report line by line. Errors from r are returned
// wrapped; parse errors are *LineError values.
func Parse(r io.Reader) (*Station, error) {
	p := NewParser()
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), maxLineSize)
	for sc.Scan() {
		if err := p.ParseLine(sc.Text()); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read station report: %w", err)
	}
	return p.Station(), nil
}

// ParseLines parses an in-memory station report.
func ParseLines(lines []string) (*Station, error) {
	p := NewParser()
	for _, line := range lines {
		if err := p.ParseLine(line); err != nil {
			return nil, err
		}
	}
	return p.Station(), nil
}

// Station returns the accumulated result. The Parser must not be used
// afterwards.
func (p *Parser) Station() *Station {
	return p.station
}

// ParseLine classifies one line and applies it. After a fatal error every
// subsequent call returns the same error.
func (p *Parser) ParseLine(line string) error {
	if p.err != nil {
		return p.err
	}
	p.ctx.line++
	line = strings.TrimSpace(line)
	if err := p.classify(line); err != nil {
		p.err = &LineError{Line: p.ctx.line, Text: line, Err: err}
		return p.err
	}
	return nil
}

// classify applies the first matching line shape.
func (p *Parser) classify(line string) error {
	if m := metadataRe.FindStringSubmatch(line); m != nil {
		p.station.Metadata[strings.TrimSpace(m[1])] = strings.TrimSpace(m[2])
		return nil
	}

	if m := categoryRe.FindStringSubmatch(line); m != nil {
		p.ctx.category = strings.TrimSpace(m[1])
		p.ctx.frequency = ""
		p.ctx.variable = ""
		if _, ok := p.station.Normals[p.ctx.category]; !ok {
			p.station.Normals[p.ctx.category] = make(Frequencies)
		}
		return nil
	}

	if m := frequencyRe.FindStringSubmatch(line); m != nil {
		if p.ctx.category == "" {
			return fmt.Errorf("%w: %s", ErrFrequencyWithoutCategory, m[1])
		}
		p.ctx.frequency = m[1]
		p.ctx.variable = ""
		p.station.Normals.frequency(p.ctx.category, p.ctx.frequency)
		return nil
	}

	if p.ctx.category == "" || p.ctx.frequency == "" {
		return nil
	}
	return p.dataRow(strings.Fields(line))
}

// dataRow interprets a row under the active frequency. Rows of any other
// shape (column captions, blank lines, footers) are ignored.
func (p *Parser) dataRow(cols []string) error {
	vars := p.station.Normals.frequency(p.ctx.category, p.ctx.frequency)

	switch p.ctx.frequency {
	case Daily:
		switch {
		case len(cols) == dailyHeaderColumns && isMonth(cols[1]):
			// The opening row only announces the variable; its values are not
			// stored.
			p.ctx.variable = cols[0]
			vars.declareDaily(p.ctx.variable)
		case len(cols) == dailyMonthColumns && isMonth(cols[0]):
			return p.storeMonth(vars, cols[0], cols[1:])
		}
	case Monthly:
		if len(cols) != monthlyColumns {
			return nil
		}
		values, err := convertRow(cols[1:])
		if err != nil {
			return err
		}
		p.ctx.variable = cols[0]
		vars[p.ctx.variable] = Series{Monthly: values}
	}
	return nil
}

// storeMonth fills one month slot of the current daily variable.
func (p *Parser) storeMonth(vars Variables, month string, cols []string) error {
	if p.ctx.variable == "" {
		return ErrDataWithoutVariable
	}
	i, ok := MonthIndex(month)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownMonth, month)
	}
	values, err := convertRow(cols)
	if err != nil {
		return err
	}
	if !vars.setMonth(p.ctx.variable, i, values) {
		return fmt.Errorf("%w: %s is not a daily variable", ErrDataWithoutVariable, p.ctx.variable)
	}
	return nil
}

func isMonth(token string) bool {
	_, ok := MonthIndex(token)
	return ok
}
