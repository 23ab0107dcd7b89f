// elasm: read-overlap indexing and scaffold linkage for genome assembly.
// Copyright (c) 2026 imec vzw.

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version, and Additional Terms
// (see below).

// This program is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Affero General Public License for more details.

// You should have received a copy of the GNU Affero General Public
// License and Additional Terms along with this program. If not, see
// <https://github.com/ExaScience/elasm/blob/master/LICENSE.txt>.

package overlap

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/exascience/pargo/pipeline"
	"github.com/google/uuid"

	"github.com/exascience/elasm/internal"
	"github.com/exascience/elasm/utils"
)

// FactIndex is the position of a Fact in a FactStore.
type FactIndex uint32

// FactStore is a dense, randomly indexable collection of Facts.
type FactStore struct {
	facts []Fact
}

// NewFactStore returns an empty FactStore with room for the given
// number of facts.
func NewFactStore(capacity int) *FactStore {
	return &FactStore{facts: make([]Fact, 0, capacity)}
}

// Add appends a Fact and returns its index.
func (s *FactStore) Add(f Fact) FactIndex {
	if uint64(len(s.facts)) > math.MaxUint32 {
		log.Panic("alignment fact store full")
	}
	s.facts = append(s.facts, f)
	return FactIndex(len(s.facts) - 1)
}

// At returns the Fact at the given index.
func (s *FactStore) At(i FactIndex) *Fact {
	return &s.facts[i]
}

// Len returns the number of facts in the store.
func (s *FactStore) Len() int {
	return len(s.facts)
}

// Reset removes all facts, keeping the storage.
func (s *FactStore) Reset() {
	s.facts = s.facts[:0]
}

const numFactFields = 15

// AppendText appends the tab-separated text form of f to buf. The
// fields are id1, id2, direction 1, direction 2, delta, right delta
// 1, right delta 2, overlap length, total length, score ratio,
// mismatches, and the four quantized match lengths (5' and 3' of read
// 1, then of read 2).
func (f *Fact) AppendText(buf []byte) []byte {
	dir1, _ := f.Direction(f.id1)
	dir2, _ := f.Direction(f.id2)
	buf = strconv.AppendInt(buf, int64(f.id1), 10)
	buf = append(buf, '\t')
	buf = strconv.AppendInt(buf, int64(f.id2), 10)
	buf = append(buf, '\t')
	buf = strconv.AppendInt(buf, int64(dir1), 10)
	buf = append(buf, '\t')
	buf = strconv.AppendInt(buf, int64(dir2), 10)
	buf = append(buf, '\t')
	buf = strconv.AppendInt(buf, int64(f.delta), 10)
	buf = append(buf, '\t')
	buf = strconv.AppendInt(buf, int64(f.rightDelta1), 10)
	buf = append(buf, '\t')
	buf = strconv.AppendInt(buf, int64(f.rightDelta2), 10)
	buf = append(buf, '\t')
	buf = strconv.AppendUint(buf, uint64(f.overlapLen), 10)
	buf = append(buf, '\t')
	buf = strconv.AppendUint(buf, uint64(f.totalLen), 10)
	buf = append(buf, '\t')
	buf = strconv.AppendUint(buf, uint64(f.scoreRatio), 10)
	buf = append(buf, '\t')
	buf = strconv.AppendUint(buf, uint64(f.mismatches), 10)
	for field := match5p1; field <= match3p2; field++ {
		buf = append(buf, '\t')
		buf = strconv.AppendUint(buf, uint64(f.quantizedMatch(field)), 10)
	}
	return buf
}

func (f Fact) String() string {
	return string(f.AppendText(nil))
}

// ParseFact parses the text form written by AppendText.
func ParseFact(line string) (Fact, error) {
	fields := strings.Split(line, "\t")
	if len(fields) != numFactFields {
		return Fact{}, fmt.Errorf("invalid alignment fact %q: %v fields instead of %v", line, len(fields), numFactFields)
	}
	var err error
	parseInt := func(s string, bitSize int) int64 {
		if err != nil {
			return 0
		}
		var v int64
		v, err = strconv.ParseInt(s, 10, bitSize)
		return v
	}
	parseUint := func(s string, bitSize int) uint64 {
		if err != nil {
			return 0
		}
		var v uint64
		v, err = strconv.ParseUint(s, 10, bitSize)
		return v
	}
	g := Geometry{
		ID1:         utils.ReadID(parseInt(fields[0], 32)),
		ID2:         utils.ReadID(parseInt(fields[1], 32)),
		Dir1:        utils.Direction(parseInt(fields[2], 8)),
		Dir2:        utils.Direction(parseInt(fields[3], 8)),
		Delta:       int32(parseInt(fields[4], 32)),
		RightDelta1: int32(parseInt(fields[5], 32)),
		RightDelta2: int32(parseInt(fields[6], 32)),
		OverlapLen:  uint32(parseUint(fields[7], 32)),
		TotalLen:    uint32(parseUint(fields[8], 32)),
		ScoreRatio:  uint8(parseUint(fields[9], 8)),
		Mismatches:  uint32(parseUint(fields[10], 32)),
	}
	var quantized [4]uint8
	for i := range quantized {
		quantized[i] = uint8(parseUint(fields[11+i], matchBits))
	}
	if err != nil {
		return Fact{}, fmt.Errorf("invalid alignment fact %q: %w", line, err)
	}
	f, err := newFact(g, quantized)
	if err != nil {
		return Fact{}, fmt.Errorf("invalid alignment fact %q: %w", line, err)
	}
	return f, nil
}

// CheckpointHeader starts the first line of every fact checkpoint.
// The run ID follows after a tab, then optional tagged fields such as
// the program version (VN:).
const CheckpointHeader = "# " + utils.ProgramName + " facts checkpoint version 1.0"

// WriteCheckpoint writes all facts in text form, one per line, after
// a header that identifies the run that produced them.
func (s *FactStore) WriteCheckpoint(w io.Writer, runID uuid.UUID) error {
	out := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(out, "%v\t%v\tVN:%v\n", CheckpointHeader, runID, utils.ProgramVersion); err != nil {
		return err
	}
	buf := internal.ReserveByteBuffer()
	defer func() { internal.ReleaseByteBuffer(buf) }()
	for i := range s.facts {
		buf = s.facts[i].AppendText(buf[:0])
		buf = append(buf, '\n')
		if _, err := out.Write(buf); err != nil {
			return err
		}
	}
	return out.Flush()
}

// ReadCheckpoint reads facts written by WriteCheckpoint, in their
// original order, and returns them together with the run ID from the
// header. Empty lines and lines starting with # are ignored.
func ReadCheckpoint(r io.Reader) (*FactStore, uuid.UUID, error) {
	input := bufio.NewReader(r)
	header, err := input.ReadString('\n')
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("missing fact checkpoint header: %w", err)
	}
	header = strings.TrimSuffix(header, "\n")
	if !strings.HasPrefix(header, CheckpointHeader+"\t") {
		return nil, uuid.Nil, fmt.Errorf("invalid fact checkpoint header %q", header)
	}
	fields := strings.Split(header[len(CheckpointHeader)+1:], "\t")
	runID, err := uuid.Parse(fields[0])
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("invalid run ID in fact checkpoint header %q: %w", header, err)
	}
	store := NewFactStore(0)
	var p pipeline.Pipeline
	p.Source(pipeline.NewScanner(input))
	p.Add(pipeline.LimitedPar(0, pipeline.Receive(func(_ int, data interface{}) interface{} {
		lines := data.([]string)
		facts := make([]Fact, 0, len(lines))
		for _, line := range lines {
			if line == "" || line[0] == '#' {
				continue
			}
			f, err := ParseFact(line)
			if err != nil {
				p.SetErr(err)
				return facts
			}
			facts = append(facts, f)
		}
		return facts
	})))
	p.Add(pipeline.Ord(pipeline.Receive(func(_ int, data interface{}) interface{} {
		store.facts = append(store.facts, data.([]Fact)...)
		return data
	})))
	p.Run()
	if err = p.Err(); err != nil {
		return nil, uuid.Nil, err
	}
	return store, runID, nil
}

// WriteCheckpointFile writes a fact checkpoint to the named file.
func (s *FactStore) WriteCheckpointFile(filename string, runID uuid.UUID) (err error) {
	pathname, err := internal.FullPathname(filename)
	if err != nil {
		return err
	}
	f, err := os.Create(pathname)
	if err != nil {
		return err
	}
	defer internal.CloseWith(f, &err)
	return s.WriteCheckpoint(f, runID)
}

// ReadCheckpointFile reads a fact checkpoint from the named file.
func ReadCheckpointFile(filename string) (store *FactStore, runID uuid.UUID, err error) {
	pathname, err := internal.FullPathname(filename)
	if err != nil {
		return nil, uuid.Nil, err
	}
	f, err := os.Open(pathname)
	if err != nil {
		return nil, uuid.Nil, err
	}
	defer internal.CloseWith(f, &err)
	return ReadCheckpoint(f)
}
