package app

import (
	"errors"
	"fmt"

	"paint-by-number/internal/progress"
	"paint-by-number/internal/store"

	"github.com/sirupsen/logrus"
)

// restore loads the overlay and counters from the store. Every failure falls
// back to defaults with a warning.
func (s *Session) restore() {
	base := s.tracker.Base()
	overlay := progress.NewOverlay(base.Width(), base.Height())

	if data, ok := s.get(store.KeyOverlay); ok {
		o, stats, err := progress.DecodeOverlay([]byte(data), base)
		switch {
		case err != nil:
			s.warn(store.KeyOverlay, fmt.Errorf("ignoring stored overlay: %w", err))
		default:
			overlay = o
			if stats.Dropped > 0 {
				s.log.WithFields(logrus.Fields{"key": store.KeyOverlay, "dropped": stats.Dropped}).
					Warn("Dropped stored cells that contradict the image")
			}
		}
	}

	painted, paintedStored := s.getCounts(store.KeyPaintedCounts)
	total, totalStored := s.getCounts(store.KeyTotalCounts)

	rep, err := s.tracker.Restore(overlay, painted, total)
	if err != nil {
		// The overlay was decoded for this image, so this is unreachable in practice.
		s.warn(store.KeyOverlay, err)
		return
	}
	if rep.RebuiltPainted && paintedStored {
		s.warn(store.KeyPaintedCounts, errors.New("stored painted counts disagree with the overlay, rebuilt"))
	}
	if rep.RecomputedTotal && totalStored {
		s.warn(store.KeyTotalCounts, errors.New("stored totals do not match the image, recomputed"))
	}
}

func (s *Session) getCounts(key string) ([]int, bool) {
	data, ok := s.get(key)
	if !ok {
		return nil, false
	}
	counts, err := progress.DecodeCounts([]byte(data))
	if err != nil {
		s.warn(key, err)
		return nil, true
	}
	return counts, true
}

// Save writes the overlay and counters to the store. Commands call it
// themselves; it is exported for callers that want to flush explicitly,
// e.g. on shutdown.
func (s *Session) Save() error {
	return s.saveGlobal()
}

// saveGlobal persists the overlay and both counter arrays. Failures are
// warnings; in-memory state is never rolled back.
func (s *Session) saveGlobal() error {
	var errs []error

	if data, err := progress.EncodeOverlay(s.tracker.Overlay()); err == nil {
		errs = append(errs, s.set(store.KeyOverlay, string(data)))
	} else {
		errs = append(errs, err)
	}

	counters := s.tracker.Counters()
	if data, err := progress.EncodeCounts(counters.PaintedCounts()); err == nil {
		errs = append(errs, s.set(store.KeyPaintedCounts, string(data)))
	} else {
		errs = append(errs, err)
	}
	if data, err := progress.EncodeCounts(counters.Totals()); err == nil {
		errs = append(errs, s.set(store.KeyTotalCounts, string(data)))
	} else {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (s *Session) saveSectionBlob(local *progress.SectionProgress) error {
	data, err := progress.EncodeSection(local)
	if err != nil {
		return err
	}
	return s.set(store.SectionKey(local.ID), string(data))
}

func (s *Session) get(key string) (string, bool) {
	v, ok, err := s.store.Get(key)
	if err != nil {
		s.warn(key, fmt.Errorf("read failed: %w", err))
		return "", false
	}
	return v, ok
}

func (s *Session) set(key, value string) error {
	if err := s.store.Set(key, value); err != nil {
		err = fmt.Errorf("write failed: %w", err)
		s.warn(key, err)
		return err
	}
	return nil
}

func (s *Session) remove(key string) {
	if err := s.store.Remove(key); err != nil {
		s.warn(key, fmt.Errorf("remove failed: %w", err))
	}
}

// Warning is the payload of EventWarning.
type Warning struct {
	Key string
	Err error
}

func (w Warning) Error() string {
	return fmt.Sprintf("%s: %v", w.Key, w.Err)
}

func (w Warning) Unwrap() error {
	return w.Err
}

func (s *Session) warn(key string, err error) {
	s.log.WithFields(logrus.Fields{"key": key, "error": err}).Warn("Progress store problem")
	s.Emit(EventWarning, Warning{Key: key, Err: err})
}
