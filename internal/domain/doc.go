// Package domain models NOAA 1981-2010 climate normals station reports as
// they move through the ETL service.
//
// # Data Source
//
// Station reports are the per-station text products published by NCEI at
// https://www.ncei.noaa.gov/pub/data/normals/1981-2010/products/station/,
// one file per station named "<station id>.normals.txt". The upstream
// collector publishes each file to the Kafka source topic with the file name
// as the message key and the file text as the value. A message with an empty
// value only announces the station; the transformer then downloads the file
// itself when fetching is enabled.
//
// # Station IDs
//
// Station IDs are 11-character GHCN-Daily identifiers: a two-letter country
// code, a network code, and an 8-character station number, e.g.
// "USC00018809". The ID is taken from the message key (file name or bare ID)
// and falls back to the "GHCN Daily ID" or "GHCN ID" metadata field of the
// report. See [StationIDFromName].
//
// # Values
//
// Normals values are raw encoded integers exactly as printed in the file,
// with completeness flags removed. Temperatures are tenths of a degree
// Fahrenheit and precipitation hundredths of an inch; no scaling is applied
// here. Parsing rules live in package normals.
package domain
