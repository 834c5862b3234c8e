package spanstore

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/spantree/spantree/internal/compress"
	"github.com/spantree/spantree/pkg/augtree"
	"github.com/spantree/spantree/pkg/safeconv"
)

// Hibernated column layout: starts are delta-encoded (they are sorted),
// ends are stored as widths relative to their start, IDs raw.
const (
	columnStarts = iota
	columnWidths
	columnIDs
	spanColumns
)

// ErrIncompleteRead is returned when a snapshot file ends before the
// expected number of bytes.
var ErrIncompleteRead = errors.New("incomplete read")

// Hibernate compresses the tracked spans and drops the live tree. A
// hibernated store only supports Boot, Serialize, and HibernatedSize;
// hibernating twice is a caller bug.
func (s *Store) Hibernate() error {
	if s.tree == nil {
		panic("spanstore: cannot hibernate an already hibernated store")
	}

	spans := s.tree.InOrder()
	s.hibernatedLen = len(spans)

	if len(spans) == 0 {
		s.tree = nil

		return nil
	}

	// Deinterleave into columns for a better compression ratio.
	columns := [spanColumns][]uint32{}
	for idx := range columns {
		columns[idx] = make([]uint32, len(spans))
	}

	for idx, span := range spans {
		columns[columnStarts][idx] = span.Start
		columns[columnWidths][idx] = span.End - span.Start
		columns[columnIDs][idx] = span.ID
	}

	compress.DeltaEncode(columns[columnStarts])

	s.tree = nil

	errs := make([]error, spanColumns)
	wg := &sync.WaitGroup{}
	wg.Add(spanColumns)

	for idx, column := range columns {
		go func(colIdx int, col []uint32) {
			defer wg.Done()

			blob, err := compress.Uint32s(col)
			if err != nil {
				errs[colIdx] = fmt.Errorf("column %d: %w", colIdx, err)

				return
			}

			s.hibernated[colIdx] = blob
		}(idx, column)
	}

	wg.Wait()

	return errors.Join(errs...)
}

// Boot decompresses the hibernated spans and rebuilds the tree. A store
// that is already live is left untouched.
func (s *Store) Boot() error {
	if s.tree != nil {
		return nil
	}

	if s.hibernatedLen == 0 {
		s.tree = augtree.New[Span, uint32](introspector{})

		return nil
	}

	columns := [spanColumns][]uint32{}
	errs := make([]error, spanColumns)
	wg := &sync.WaitGroup{}
	wg.Add(spanColumns)

	for idx := range columns {
		go func(colIdx int) {
			defer wg.Done()

			columns[colIdx] = make([]uint32, s.hibernatedLen)

			err := compress.ToUint32s(s.hibernated[colIdx], columns[colIdx])
			if err != nil {
				errs[colIdx] = fmt.Errorf("column %d: %w", colIdx, err)
			}
		}(idx)
	}

	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return err
	}

	compress.DeltaDecode(columns[columnStarts])

	spans := make([]Span, s.hibernatedLen)
	for idx := range spans {
		spans[idx] = Span{
			Start: columns[columnStarts][idx],
			End:   columns[columnStarts][idx] + columns[columnWidths][idx],
			ID:    columns[columnIDs][idx],
		}
	}

	// InOrder emitted the spans sorted, so the tree rebuilds in O(n).
	s.tree = augtree.NewFromSorted[Span, uint32](introspector{}, spans)
	s.hibernated = [spanColumns][]byte{}
	s.hibernatedLen = 0

	return nil
}

// HibernatedSize returns the total compressed bytes held by a hibernated
// store, 0 when live.
func (s *Store) HibernatedSize() int {
	total := 0
	for _, blob := range s.hibernated {
		total += len(blob)
	}

	return total
}

// Serialize writes the hibernated columns to a snapshot file. It requires
// the hibernated state and consumes it: the store must be deserialized or
// re-filled afterwards.
func (s *Store) Serialize(path string) error {
	if s.tree != nil {
		panic("spanstore: serialization requires the hibernated state")
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	if err := writeUvarint(writer, safeconv.MustIntToUint(s.hibernatedLen)); err != nil {
		return fmt.Errorf("write span count: %w", err)
	}

	for idx, blob := range s.hibernated {
		if err := writeUvarint(writer, safeconv.MustIntToUint(len(blob))); err != nil {
			return fmt.Errorf("write column len %d: %w", idx, err)
		}

		if _, err := writer.Write(blob); err != nil {
			return fmt.Errorf("write column %d: %w", idx, err)
		}

		s.hibernated[idx] = nil
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}

	return nil
}

// Deserialize reads a snapshot file into the hibernated state. The store
// must be empty or hibernated; deserializing over live spans is a caller
// bug.
func (s *Store) Deserialize(path string) error {
	if s.tree != nil {
		if s.tree.Len() != 0 {
			panic("spanstore: deserialization requires an empty or hibernated store")
		}

		s.tree = nil
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	reader := bufio.NewReader(file)

	count, err := binary.ReadUvarint(reader)
	if err != nil {
		return fmt.Errorf("read span count: %w", err)
	}

	s.hibernatedLen = safeconv.MustUintToInt(uint(count))

	for idx := range s.hibernated {
		blobLen, readErr := binary.ReadUvarint(reader)
		if readErr != nil {
			return fmt.Errorf("read column len %d: %w", idx, readErr)
		}

		blob := make([]byte, safeconv.MustUintToInt(uint(blobLen)))

		read, readErr := io.ReadFull(reader, blob)
		if readErr != nil {
			return fmt.Errorf("%w: column %d after %d bytes: %s", ErrIncompleteRead, idx, read, readErr)
		}

		s.hibernated[idx] = blob
	}

	return nil
}

// writeUvarint writes v in the variable-width encoding ReadUvarint expects.
func writeUvarint(writer *bufio.Writer, v uint) error {
	var buf [binary.MaxVarintLen64]byte

	n := binary.PutUvarint(buf[:], uint64(v))

	_, err := writer.Write(buf[:n])

	return err
}
