// Package workload reads access traces and replays them on a memory
// subsystem.
//
// A trace has one request per line:
//
//	R  <addr>           read a word
//	W  <addr> <value>   write a word
//	RW <addr> <value>   write a word and return its old value
//	T                   raise the periodic clock interrupt
//
// Numbers are decimal or 0x-prefixed hex. A '#' starts a comment, and blank
// lines are ignored.
package workload

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sarchlab/memhier/mem/mem"
)

// ErrSyntax is returned for a malformed trace line.
var ErrSyntax = errors.New("malformed trace line")

// Kind is the type of a trace request.
type Kind int

// The request kinds.
const (
	KindRead Kind = iota
	KindWrite
	KindReadWrite
	KindInterrupt
)

func (k Kind) String() string {
	switch k {
	case KindRead:
		return "R"
	case KindWrite:
		return "W"
	case KindReadWrite:
		return "RW"
	case KindInterrupt:
		return "T"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// A Request is one line of a trace.
type Request struct {
	Kind    Kind
	Address uint32
	Value   uint32

	// Line is the 1-based line number in the trace.
	Line int
}

// Control returns the access control of a memory request.
func (r Request) Control() mem.AccessControl {
	switch r.Kind {
	case KindRead:
		return mem.ReadEnable
	case KindWrite:
		return mem.WriteEnable
	case KindReadWrite:
		return mem.ReadWrite
	default:
		return 0
	}
}

// ParseFile reads a trace file.
func ParseFile(path string) ([]Request, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Parse(f)
}

// Parse reads a trace.
func Parse(r io.Reader) ([]Request, error) {
	var requests []Request

	scanner := bufio.NewScanner(r)
	lineNo := 0

	for scanner.Scan() {
		lineNo++

		text := scanner.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}

		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}

		req, err := parseFields(fields)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}

		req.Line = lineNo
		requests = append(requests, req)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return requests, nil
}

func parseFields(fields []string) (Request, error) {
	var req Request

	numOperands := 0

	switch strings.ToUpper(fields[0]) {
	case "R":
		req.Kind = KindRead
		numOperands = 1
	case "W":
		req.Kind = KindWrite
		numOperands = 2
	case "RW":
		req.Kind = KindReadWrite
		numOperands = 2
	case "T":
		req.Kind = KindInterrupt
	default:
		return req, fmt.Errorf("%w: unknown request %q", ErrSyntax, fields[0])
	}

	if len(fields)-1 != numOperands {
		return req, fmt.Errorf("%w: %s takes %d operands, got %d",
			ErrSyntax, req.Kind, numOperands, len(fields)-1)
	}

	if numOperands >= 1 {
		addr, err := parseNumber(fields[1])
		if err != nil {
			return req, err
		}

		req.Address = addr
	}

	if numOperands == 2 {
		value, err := parseNumber(fields[2])
		if err != nil {
			return req, err
		}

		req.Value = value
	}

	return req, nil
}

func parseNumber(s string) (uint32, error) {
	var (
		v   uint64
		err error
	)

	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err = strconv.ParseUint(s[2:], 16, 32)
	} else {
		v, err = strconv.ParseUint(s, 10, 32)
	}

	if err != nil {
		return 0, fmt.Errorf("%w: bad number %q", ErrSyntax, s)
	}

	return uint32(v), nil
}
