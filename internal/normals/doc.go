// Package normals parses NOAA 1981-2010 climate normals station reports.
//
// # File Format
//
// Each station report is a plain-text file, e.g. USC00018809.normals.txt from
// https://www.ncei.noaa.gov/pub/data/normals/1981-2010/products/station/.
// The parser recognizes four line shapes, checked in order:
//
//	Station Name: EXAMPLE STATION     metadata ("<key>:<value>")
//	Temperature-Related Normals       category header
//	Monthly                           frequency header (any capitalized "*ly" word)
//	mly-tmax-normal 652S 691S ...     data row
//
// Lines before the first category header that are not metadata are ignored,
// as are data rows whose shape does not match the active frequency.
//
// Monthly rows carry a variable name followed by twelve values (JAN..DEC).
// Daily blocks open with a 33-column row (variable, month, 31 values) that
// only announces the variable; the following 32-column rows (month, 31
// values) fill the month slots:
//
//	dly-tmax-normal JAN ...   announces dly-tmax-normal
//	FEB 673S 674S ...         stored at index 1
//
// # Value Encoding
//
// Values are raw encoded integers exactly as printed. A single trailing
// uppercase letter is a completeness flag (S, R, P, Q, C) and is stripped.
// "-8888" marks a day that does not exist in the month; a trailing run of
// it is trimmed from each row before conversion. No scaling is applied.
package normals
