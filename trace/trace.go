// Package trace reads and writes memory access traces.
//
// A trace is a sequence of records, one per line, each holding an access
// kind and a hexadecimal address:
//
//	0 7fffed80
//	1 0x10010000 trailing text is ignored
//	2 400100
//
// Kind 0 is a data read, 1 a data write and 2 an instruction fetch.
package trace

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sarchlab/cachesim/cache"
)

// ErrMalformedRecord is wrapped by ParseError.
var ErrMalformedRecord = errors.New("malformed trace record")

// Record is a single memory access.
type Record struct {
	// Kind is the access kind. Only meaningful when Known returns true.
	Kind cache.AccessKind
	// RawKind is the kind as written in the trace.
	RawKind uint64
	// Address is the byte address of the access.
	Address uint64
	// Line is the 1-based line number the record was read from, or 0 for
	// records that did not come from a file.
	Line int
}

// NewRecord creates a record of a known kind.
func NewRecord(kind cache.AccessKind, address uint64) Record {
	return Record{
		Kind:    kind,
		RawKind: uint64(kind),
		Address: address,
	}
}

// Known reports whether the record carries one of the three access kinds.
func (r Record) Known() bool {
	return r.RawKind <= uint64(cache.InstrFetch)
}

// ParseError describes a record that could not be parsed.
type ParseError struct {
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %q: %v", e.Line, e.Text, e.Err)
}

func (e *ParseError) Unwrap() error { return ErrMalformedRecord }

// ParseRecord parses a single record line.
func ParseRecord(text string) (Record, error) {
	fields := strings.Fields(text)
	if len(fields) < 2 {
		return Record{}, fmt.Errorf("expected <kind> <address>, got %d fields",
			len(fields))
	}

	kind, err := strconv.ParseUint(fields[0], 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf("invalid kind: %w", err)
	}

	addr, err := ParseAddress(fields[1])
	if err != nil {
		return Record{}, err
	}

	return Record{
		Kind:    cache.AccessKind(kind),
		RawKind: kind,
		Address: addr,
	}, nil
}

// ParseAddress parses a hexadecimal address with an optional 0x prefix.
func ParseAddress(s string) (uint64, error) {
	digits := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")

	addr, err := strconv.ParseUint(digits, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid address: %w", err)
	}

	return addr, nil
}

// Reader streams records from a trace.
type Reader struct {
	scanner *bufio.Scanner
	line    int
	record  Record
	err     error
}

// NewReader creates a reader over r.
func NewReader(r io.Reader) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	return &Reader{scanner: scanner}
}

// Next advances to the next record. It returns false at the end of the
// trace or at the first malformed record; Err tells the two apart.
func (r *Reader) Next() bool {
	if r.err != nil {
		return false
	}

	for r.scanner.Scan() {
		r.line++

		text := r.scanner.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}

		record, err := ParseRecord(text)
		if err != nil {
			r.err = &ParseError{Line: r.line, Text: text, Err: err}
			return false
		}

		record.Line = r.line
		r.record = record

		return true
	}

	r.err = r.scanner.Err()

	return false
}

// Record returns the current record.
func (r *Reader) Record() Record {
	return r.record
}

// Err returns the error that stopped the reader, if any.
func (r *Reader) Err() error {
	return r.err
}

// ReadAll reads every record until the end of the trace.
func ReadAll(r io.Reader) ([]Record, error) {
	reader := NewReader(r)

	var records []Record
	for reader.Next() {
		records = append(records, reader.Record())
	}

	return records, reader.Err()
}

// Writer writes records in trace format.
type Writer struct {
	w *bufio.Writer
}

// NewWriter creates a buffered trace writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Write writes one record.
func (w *Writer) Write(r Record) error {
	_, err := fmt.Fprintf(w.w, "%d %x\n", r.RawKind, r.Address)
	return err
}

// WriteAll writes all records and flushes.
func (w *Writer) WriteAll(records []Record) error {
	for _, r := range records {
		if err := w.Write(r); err != nil {
			return err
		}
	}

	return w.Flush()
}

// Flush writes any buffered data.
func (w *Writer) Flush() error {
	return w.w.Flush()
}
