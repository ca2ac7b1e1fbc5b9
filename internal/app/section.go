package app

import (
	"encoding/json"
	"fmt"

	"paint-by-number/internal/progress"
	"paint-by-number/internal/store"
	"paint-by-number/pkg/geometry"

	"github.com/sirupsen/logrus"
)

// EnterSection opens a section for editing. The returned copy holds the
// global paint of the section plus whatever the section's own stored
// progress adds. The section becomes the selected section in the store.
func (s *Session) EnterSection(id progress.SectionID) (*progress.SectionProgress, error) {
	if prev := s.active; prev != nil {
		if prev.ID != id {
			s.log.WithFields(logrus.Fields{"section": id.String(), "open": prev.ID.String()}).
				Warn("Entering a section while another is open, merging the open copy")
		}
		s.SaveSection(prev)
	}

	local, err := s.projectSection(id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(id); err == nil {
		s.set(store.KeySelectedSection, string(data))
	}
	s.active = local

	s.log.WithField("section", id.String()).Debug("Entered section")
	s.Emit(EventSectionEntered, local)
	return local, nil
}

// projectSection projects a section from the global overlay and absorbs the
// section's stored local progress. A malformed stored blob is ignored.
func (s *Session) projectSection(id progress.SectionID) (*progress.SectionProgress, error) {
	local, err := s.tracker.Project(id)
	if err != nil {
		return nil, err
	}

	key := store.SectionKey(id)
	data, ok := s.get(key)
	if !ok {
		return local, nil
	}
	stored, stats, err := progress.DecodeSection([]byte(data), s.tracker.Base(), s.Geometry(), id)
	if err != nil {
		s.warn(key, fmt.Errorf("ignoring stored section progress: %w", err))
		return local, nil
	}
	if stats.Dropped > 0 {
		s.log.WithFields(logrus.Fields{"key": key, "dropped": stats.Dropped}).Warn("Dropped invalid stored section cells")
	}
	local.Absorb(stored)
	return local, nil
}

// PaintInSection paints one local cell of an open section and saves it.
// The effect lists the painted cell in global coordinates, whether or not
// the global overlay already held it.
func (s *Session) PaintInSection(local *progress.SectionProgress, lx, ly, color int) Effect {
	if local == nil || !local.Paint(lx, ly, color) {
		return Effect{}
	}
	s.SaveSection(local)
	return localEffect(local, []geometry.PointInt{geometry.Pt(lx, ly)})
}

// FillInSection flood-fills inside an open section and saves it. Like
// PaintInSection, the effect describes the local copy.
func (s *Session) FillInSection(local *progress.SectionProgress, lx, ly, color int) Effect {
	if local == nil {
		return Effect{}
	}
	changed := local.Fill(lx, ly, color)
	if len(changed) == 0 {
		return Effect{}
	}
	s.SaveSection(local)
	return localEffect(local, changed)
}

// localEffect maps cells changed in a section copy to global coordinates.
func localEffect(local *progress.SectionProgress, changed []geometry.PointInt) Effect {
	b := local.Bounds()
	origin := geometry.Pt(b.X, b.Y)
	global := make([]geometry.PointInt, len(changed))
	for i, p := range changed {
		global[i] = p.Add(origin)
	}
	return cellsEffect(global)
}

// SaveSection stores a section's local progress and merges it into the
// global overlay. The merge is additive: it never erases global paint. The
// effect lists only the newly painted global cells.
func (s *Session) SaveSection(local *progress.SectionProgress) Effect {
	if local == nil {
		return Effect{}
	}
	s.saveSectionBlob(local)

	eff := cellsEffect(s.tracker.Merge(local))
	if eff.Applied {
		s.log.WithFields(logrus.Fields{"section": local.ID.String(), "cells": len(eff.Changed)}).Debug("Merged section")
		s.saveGlobal()
		s.Emit(EventCellsPainted, eff)
	}
	return eff
}

// LeaveSection merges the local copy back and clears the selected section.
func (s *Session) LeaveSection(id progress.SectionID, local *progress.SectionProgress) Effect {
	if local != nil && local.ID != id {
		s.log.WithFields(logrus.Fields{"section": id.String(), "copy": local.ID.String()}).
			Warn("Section copy does not match the section being left")
		return Effect{}
	}

	eff := s.SaveSection(local)
	s.remove(store.KeySelectedSection)
	if s.active != nil && s.active.ID == id {
		s.active = nil
	}

	s.log.WithField("section", id.String()).Debug("Left section")
	s.Emit(EventSectionLeft, id)
	return eff
}

// ResetSection clears a section's local copy and its stored progress. The
// global overlay is not touched, so paint the section already contributed
// stays, and it reappears in the copy the next time the section is entered.
func (s *Session) ResetSection(local *progress.SectionProgress) Effect {
	if local == nil {
		return Effect{}
	}
	local.Reset()
	s.saveSectionBlob(local)

	s.log.WithField("section", local.ID.String()).Info("Section progress reset")
	s.Emit(EventSectionReset, local.ID)
	return Effect{Applied: true, Full: true}
}

// ResetAll erases all progress: the overlay, painted counters and every
// stored section. Totals are kept.
func (s *Session) ResetAll() Effect {
	s.tracker.Reset()
	if s.active != nil {
		s.active.Reset()
	}

	s.remove(store.KeyOverlay)
	s.remove(store.KeyPaintedCounts)
	s.remove(store.KeyTotalCounts)
	for _, id := range s.Geometry().All() {
		s.remove(store.SectionKey(id))
	}

	s.log.Info("All progress reset")
	s.Emit(EventProgressReset, nil)
	return Effect{Applied: true, Full: true}
}

// SelectedSection returns the section recorded as selected in the store.
func (s *Session) SelectedSection() (progress.SectionID, bool) {
	data, ok := s.get(store.KeySelectedSection)
	if !ok {
		return progress.SectionID{}, false
	}
	var id progress.SectionID
	if err := json.Unmarshal([]byte(data), &id); err != nil || !s.Geometry().Valid(id) {
		return progress.SectionID{}, false
	}
	return id, true
}

// SectionAt returns the section under a pointer position on the overview
// render.
func (s *Session) SectionAt(px, py float64) (progress.SectionID, bool) {
	scale := s.OverviewScale()
	x, y := int(px/scale), int(py/scale)
	if px < 0 || py < 0 || !s.tracker.Base().In(x, y) {
		return progress.SectionID{}, false
	}
	return s.Geometry().SectionAt(x, y), true
}
