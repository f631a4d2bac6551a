// Package trace parses the two input formats spec.md section 6 defines as
// external collaborators: the DRAM-operation trace ("address R|W" lines)
// and the per-core CPU trace (bursts of non-memory instructions followed by
// one memory access). The core only ever consumes the iterators this
// package produces.
package trace

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sarchlab/ramulator/request"
)

// DRAMEntry is one parsed line of a DRAM-operation trace.
type DRAMEntry struct {
	Address uint64
	Type    request.Type
}

// DRAMReader iterates a DRAM trace file one line at a time.
type DRAMReader struct {
	scanner *bufio.Scanner
	lineNo  int
	done    bool
}

// OpenDRAMTrace opens path and returns a reader over it.
func OpenDRAMTrace(path string) (*DRAMReader, io.Closer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("trace: %w", err)
	}
	return NewDRAMReader(f), f, nil
}

// NewDRAMReader wraps r as a DRAM trace reader.
func NewDRAMReader(r io.Reader) *DRAMReader {
	return &DRAMReader{scanner: bufio.NewScanner(r)}
}

// Next returns the next entry, or ok=false once the trace is exhausted.
// EOF is the only termination condition spec.md section 6 defines for a
// DRAM trace; a malformed line is a fatal configuration error.
func (r *DRAMReader) Next() (entry DRAMEntry, ok bool, err error) {
	if r.done {
		return DRAMEntry{}, false, nil
	}
	if !r.scanner.Scan() {
		r.done = true
		if scanErr := r.scanner.Err(); scanErr != nil {
			return DRAMEntry{}, false, fmt.Errorf("trace: %w", scanErr)
		}
		return DRAMEntry{}, false, nil
	}
	r.lineNo++

	line := strings.TrimSpace(r.scanner.Text())
	if line == "" {
		return r.Next()
	}

	fields := strings.Fields(line)
	if len(fields) != 2 {
		return DRAMEntry{}, false, fmt.Errorf("trace: line %d: expected \"address R|W\", got %q", r.lineNo, line)
	}

	addr, err := strconv.ParseUint(fields[0], 10, 64)
	if err != nil {
		return DRAMEntry{}, false, fmt.Errorf("trace: line %d: bad address: %w", r.lineNo, err)
	}

	var typ request.Type
	switch fields[1] {
	case "R":
		typ = request.Read
	case "W":
		typ = request.Write
	default:
		return DRAMEntry{}, false, fmt.Errorf("trace: line %d: unknown access type %q", r.lineNo, fields[1])
	}

	return DRAMEntry{Address: addr, Type: typ}, true, nil
}

// CPURecord is one burst-then-access record of a CPU trace: bubbles
// non-memory instructions retire before the one memory access described by
// Address/Type.
type CPURecord struct {
	Bubbles uint64
	Address uint64
	Type    request.Type
}

// CPUReader iterates a single core's CPU trace file.
type CPUReader struct {
	scanner *bufio.Scanner
	lineNo  int
	done    bool
}

// OpenCPUTrace opens path and returns a reader over one core's trace.
func OpenCPUTrace(path string) (*CPUReader, io.Closer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("trace: %w", err)
	}
	return NewCPUReader(f), f, nil
}

// NewCPUReader wraps r as a CPU trace reader.
func NewCPUReader(r io.Reader) *CPUReader {
	return &CPUReader{scanner: bufio.NewScanner(r)}
}

// Next returns the next record, or ok=false once the trace is exhausted.
func (r *CPUReader) Next() (rec CPURecord, ok bool, err error) {
	if r.done {
		return CPURecord{}, false, nil
	}
	if !r.scanner.Scan() {
		r.done = true
		if scanErr := r.scanner.Err(); scanErr != nil {
			return CPURecord{}, false, fmt.Errorf("trace: %w", scanErr)
		}
		return CPURecord{}, false, nil
	}
	r.lineNo++

	line := strings.TrimSpace(r.scanner.Text())
	if line == "" {
		return r.Next()
	}

	fields := strings.Fields(line)
	if len(fields) != 3 {
		return CPURecord{}, false, fmt.Errorf("trace: line %d: expected \"bubbles address R|W\", got %q", r.lineNo, line)
	}

	bubbles, err := strconv.ParseUint(fields[0], 10, 64)
	if err != nil {
		return CPURecord{}, false, fmt.Errorf("trace: line %d: bad bubble count: %w", r.lineNo, err)
	}
	addr, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		return CPURecord{}, false, fmt.Errorf("trace: line %d: bad address: %w", r.lineNo, err)
	}

	var typ request.Type
	switch fields[2] {
	case "R":
		typ = request.Read
	case "W":
		typ = request.Write
	default:
		return CPURecord{}, false, fmt.Errorf("trace: line %d: unknown access type %q", r.lineNo, fields[2])
	}

	return CPURecord{Bubbles: bubbles, Address: addr, Type: typ}, true, nil
}
