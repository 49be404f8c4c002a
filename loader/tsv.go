// Package loader turns AS range datasets into range tables and keeps a
// store supplied with fresh ones.
package loader

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/netip"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/Ramzeth/asnranger"
)

var (
	// ErrInvalidRow is wrapped by every row level parse error.
	ErrInvalidRow = errors.New("invalid row")
	// ErrEmptyDataset is returned when a dataset yields no announced range.
	ErrEmptyDataset = errors.New("dataset contains no announced ranges")
)

const (
	// notRoutedAS marks unannounced ranges in ip2asn datasets.
	notRoutedAS = 0
	noCountry   = "None"
	maxLineSize = 1 << 20
)

// RowError reports a malformed dataset row.
type RowError struct {
	Line   int
	Reason string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("%s at line %d: %s", ErrInvalidRow, e.Line, e.Reason)
}

func (e *RowError) Unwrap() error {
	return ErrInvalidRow
}

var gzipMagic = []byte{0x1f, 0x8b}

// Decode returns a reader over the uncompressed content of r. Gzip input is
// recognised by its magic bytes; anything else is passed through.
func Decode(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(len(gzipMagic))
	if err != nil && err != io.EOF {
		return nil, err
	}
	if !bytes.Equal(magic, gzipMagic) {
		return br, nil
	}
	zr, err := gzip.NewReader(br)
	if err != nil {
		return nil, fmt.Errorf("open gzip stream: %w", err)
	}
	return zr, nil
}

// ParseTSV reads records in the iptoasn ip2asn format:
//
//	range_start	range_end	AS_number	country_code	AS_description
//
// Blank lines and rows for AS 0 (not routed) are skipped. A "None" country
// becomes an empty string.
func ParseTSV(r io.Reader) ([]asnranger.Record, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var records []asnranger.Record
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}
		record, announced, err := parseRow(line, text)
		if err != nil {
			return nil, err
		}
		if announced {
			records = append(records, record)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	return records, nil
}

func parseRow(line int, text string) (asnranger.Record, bool, error) {
	fields := strings.SplitN(text, "\t", 5)
	if len(fields) < 5 {
		return asnranger.Record{}, false, &RowError{Line: line, Reason: fmt.Sprintf("expected 5 fields, got %d", len(fields))}
	}
	first, err := netip.ParseAddr(strings.TrimSpace(fields[0]))
	if err != nil {
		return asnranger.Record{}, false, &RowError{Line: line, Reason: err.Error()}
	}
	last, err := netip.ParseAddr(strings.TrimSpace(fields[1]))
	if err != nil {
		return asnranger.Record{}, false, &RowError{Line: line, Reason: err.Error()}
	}
	number, err := strconv.ParseUint(strings.TrimSpace(fields[2]), 10, 32)
	if err != nil {
		return asnranger.Record{}, false, &RowError{Line: line, Reason: "AS number: " + err.Error()}
	}
	if number == notRoutedAS {
		return asnranger.Record{}, false, nil
	}
	country := strings.TrimSpace(fields[3])
	if country == noCountry {
		country = ""
	}
	return asnranger.Record{
		FirstIP:     first,
		LastIP:      last,
		Number:      uint32(number),
		Country:     country,
		Description: strings.TrimSpace(fields[4]),
	}, true, nil
}

// Load decodes and parses a TSV dataset from r and builds a table from it.
func Load(r io.Reader) (*asnranger.Table, error) {
	decoded, err := Decode(r)
	if err != nil {
		return nil, err
	}
	records, err := ParseTSV(decoded)
	if err != nil {
		return nil, err
	}
	return build(records)
}

func build(records []asnranger.Record) (*asnranger.Table, error) {
	if len(records) == 0 {
		return nil, ErrEmptyDataset
	}
	return asnranger.NewTable(records)
}
