package trace

import (
	"strings"
	"testing"

	"github.com/sarchlab/ramulator/request"
)

func TestDRAMReaderParsesReadsAndWrites(t *testing.T) {
	r := NewDRAMReader(strings.NewReader("0 R\n64 W\n"))

	e1, ok, err := r.Next()
	if err != nil || !ok {
		t.Fatalf("Next: %v, ok=%v", err, ok)
	}
	if e1.Address != 0 || e1.Type != request.Read {
		t.Fatalf("unexpected first entry: %+v", e1)
	}

	e2, ok, err := r.Next()
	if err != nil || !ok {
		t.Fatalf("Next: %v, ok=%v", err, ok)
	}
	if e2.Address != 64 || e2.Type != request.Write {
		t.Fatalf("unexpected second entry: %+v", e2)
	}

	_, ok, err = r.Next()
	if err != nil || ok {
		t.Fatalf("expected EOF, got ok=%v err=%v", ok, err)
	}
}

func TestDRAMReaderSkipsBlankLines(t *testing.T) {
	r := NewDRAMReader(strings.NewReader("0 R\n\n64 R\n"))
	count := 0
	for {
		_, ok, err := r.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if !ok {
			break
		}
		count++
	}
	if count != 2 {
		t.Fatalf("expected 2 entries, got %d", count)
	}
}

func TestDRAMReaderRejectsMalformedLine(t *testing.T) {
	r := NewDRAMReader(strings.NewReader("not-a-line\n"))
	_, _, err := r.Next()
	if err == nil {
		t.Fatalf("expected an error for a malformed trace line")
	}
}

func TestCPUReaderParsesBubbleBurstRecords(t *testing.T) {
	r := NewCPUReader(strings.NewReader("100 0 R\n250 64 W\n"))

	rec1, ok, err := r.Next()
	if err != nil || !ok {
		t.Fatalf("Next: %v, ok=%v", err, ok)
	}
	if rec1.Bubbles != 100 || rec1.Address != 0 || rec1.Type != request.Read {
		t.Fatalf("unexpected record: %+v", rec1)
	}

	rec2, ok, err := r.Next()
	if err != nil || !ok {
		t.Fatalf("Next: %v, ok=%v", err, ok)
	}
	if rec2.Bubbles != 250 || rec2.Address != 64 || rec2.Type != request.Write {
		t.Fatalf("unexpected record: %+v", rec2)
	}
}
