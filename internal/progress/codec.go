package progress

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	pbnimage "paint-by-number/internal/image"
)

// ErrMalformed is returned when a stored blob is not a JSON array of the expected shape.
var ErrMalformed = errors.New("malformed progress data")

// DecodeStats describes what a tolerant decode had to discard.
type DecodeStats struct {
	// Dropped counts painted claims that contradicted the base image or
	// were not integers.
	Dropped int
}

// EncodeOverlay serializes an overlay as rows of 0 / color+1.
func EncodeOverlay(o *Overlay) ([]byte, error) {
	return json.Marshal(o.Encoded())
}

// DecodeOverlay parses a stored overlay for base. Missing rows or cells,
// null and false decode as unpainted; values beyond the image are ignored.
// A painted claim whose color differs from the base color is dropped.
func DecodeOverlay(data []byte, base *pbnimage.Indexed) (*Overlay, DecodeStats, error) {
	o := NewOverlay(base.Width(), base.Height())
	stats, err := decodeCells(data, o.cells, o.width, o.height, func(x, y, color int) bool {
		return base.At(x, y) == color
	})
	if err != nil {
		return nil, stats, err
	}
	return o, stats, nil
}

// EncodeSection serializes a section's local copy.
func EncodeSection(s *SectionProgress) ([]byte, error) {
	return json.Marshal(s.Encoded())
}

// DecodeSection parses a stored local copy for section id of g.
func DecodeSection(data []byte, base *pbnimage.Indexed, g Geometry, id SectionID) (*SectionProgress, DecodeStats, error) {
	if !g.Valid(id) {
		return nil, DecodeStats{}, fmt.Errorf("section %s: %w", id, ErrSectionRange)
	}
	s := newSectionProgress(base, id, g.Bounds(id))
	w, h := s.Size()
	stats, err := decodeCells(data, s.cells, w, h, func(lx, ly, color int) bool {
		return s.ColorAt(lx, ly) == color
	})
	if err != nil {
		return nil, stats, err
	}
	return s, stats, nil
}

// EncodeCounts serializes a per-color counter array.
func EncodeCounts(counts []int) ([]byte, error) {
	return json.Marshal(counts)
}

// DecodeCounts parses a per-color counter array.
func DecodeCounts(data []byte) ([]int, error) {
	var counts []int
	if err := json.Unmarshal(data, &counts); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return counts, nil
}

func decodeCells(data []byte, cells []Cell, w, h int, valid func(x, y, color int) bool) (DecodeStats, error) {
	var stats DecodeStats

	var rows []json.RawMessage
	if err := json.Unmarshal(data, &rows); err != nil {
		return stats, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	for y, raw := range rows {
		if y >= h {
			break
		}
		// A null row, a hole left by sparse writers, decodes to nil.
		var row []any
		if err := json.Unmarshal(raw, &row); err != nil {
			return stats, fmt.Errorf("%w: row %d: %v", ErrMalformed, y, err)
		}
		for x, v := range row {
			if x >= w {
				break
			}
			cell, ok := decodeValue(v)
			if !ok {
				stats.Dropped++
				continue
			}
			if col, painted := cell.Color(); painted && !valid(x, y, col) {
				stats.Dropped++
				continue
			}
			cells[y*w+x] = cell
		}
	}
	return stats, nil
}

func decodeValue(v any) (Cell, bool) {
	switch n := v.(type) {
	case nil, bool:
		return Unpainted, true
	case float64:
		if n != math.Trunc(n) {
			return Unpainted, false
		}
		return DecodeCell(int(n)), true
	default:
		return Unpainted, false
	}
}
