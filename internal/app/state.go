// Package app provides the paint session: the command surface the views
// drive, persistence of progress, configuration, and events.
package app

import (
	"errors"
	"fmt"
	"image"

	pbnimage "paint-by-number/internal/image"
	"paint-by-number/internal/progress"
	"paint-by-number/internal/render"
	"paint-by-number/internal/store"
	"paint-by-number/pkg/geometry"

	"github.com/sirupsen/logrus"
)

// ErrPaletteMismatch is returned when the image was validated against a
// palette of a different size than the one supplied.
var ErrPaletteMismatch = errors.New("image and palette disagree on color count")

// EventType identifies different session events.
type EventType int

const (
	EventSessionLoaded EventType = iota
	EventCellsPainted
	EventSectionEntered
	EventSectionLeft
	EventSectionReset
	EventProgressReset
	EventWarning
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// Effect is the outcome of a command. Changed lists the global cells whose
// display changed; Full means the whole raster must be redrawn.
type Effect struct {
	Applied bool
	Changed []geometry.PointInt
	Full    bool
}

func cellsEffect(changed []geometry.PointInt) Effect {
	return Effect{Applied: len(changed) > 0, Changed: changed}
}

// Session holds the paint progress of one image and mediates every change
// to it. All commands run synchronously on the caller's goroutine; a
// Session is not safe for concurrent use.
type Session struct {
	tracker *progress.Tracker
	palette pbnimage.Palette
	store   store.Store
	log     logrus.FieldLogger

	maxWidth  int
	maxHeight int

	// active is the section copy handed out by EnterSection, if any.
	active *progress.SectionProgress

	listeners map[EventType][]EventListener
}

// Option configures a Session.
type Option func(*settings)

type settings struct {
	log         logrus.FieldLogger
	sectionSize int
	maxWidth    int
	maxHeight   int
	listeners   map[EventType][]EventListener
}

// WithLogger sets the logger. The default is the logrus standard logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *settings) { s.log = l }
}

// WithSectionSize sets the section side in cells.
func WithSectionSize(n int) Option {
	return func(s *settings) { s.sectionSize = n }
}

// WithDisplaySize bounds the size of full renders.
func WithDisplaySize(w, h int) Option {
	return func(s *settings) { s.maxWidth, s.maxHeight = w, h }
}

// WithListener registers a listener before the session restores its state,
// so it also sees warnings raised while loading.
func WithListener(event EventType, l EventListener) Option {
	return func(s *settings) { s.listeners[event] = append(s.listeners[event], l) }
}

// WithConfig applies the section and display settings of cfg.
func WithConfig(cfg Config) Option {
	return func(s *settings) {
		s.sectionSize = cfg.SectionSize
		s.maxWidth, s.maxHeight = cfg.MaxWidth, cfg.MaxHeight
	}
}

// LoadSession creates a session for img and pal and restores any progress
// found in st. Unreadable or inconsistent stored progress is logged and
// replaced by defaults; only an unusable image or palette is an error.
func LoadSession(img *pbnimage.Indexed, pal pbnimage.Palette, st store.Store, opts ...Option) (*Session, error) {
	if img == nil {
		return nil, pbnimage.ErrEmpty
	}
	if pal.Len() == 0 {
		return nil, pbnimage.ErrEmptyPalette
	}
	if img.Colors() != pal.Len() {
		return nil, fmt.Errorf("%w: image uses %d, palette has %d", ErrPaletteMismatch, img.Colors(), pal.Len())
	}

	cfg := settings{
		log:         logrus.StandardLogger(),
		sectionSize: progress.DefaultSectionSize,
		maxWidth:    render.DefaultMaxWidth,
		maxHeight:   render.DefaultMaxHeight,
		listeners:   make(map[EventType][]EventListener),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if st == nil {
		st = store.NewMemory()
	}

	s := &Session{
		tracker:   progress.NewTracker(img, cfg.sectionSize),
		palette:   pal,
		store:     st,
		log:       cfg.log,
		maxWidth:  cfg.maxWidth,
		maxHeight: cfg.maxHeight,
		listeners: cfg.listeners,
	}
	s.restore()

	rep := s.tracker.Counters().Report()
	s.log.WithFields(logrus.Fields{
		"width":   img.Width(),
		"height":  img.Height(),
		"colors":  pal.Len(),
		"painted": rep.Painted,
		"total":   rep.Total,
	}).Info("Session loaded")
	s.Emit(EventSessionLoaded, rep)
	return s, nil
}

// LoadSourceSession is LoadSession for an already fetched Source.
func LoadSourceSession(src *pbnimage.Source, st store.Store, opts ...Option) (*Session, error) {
	if src == nil {
		return nil, pbnimage.ErrEmpty
	}
	return LoadSession(src.Image, src.Palette, st, opts...)
}

// On registers an event listener for the specified event type.
func (s *Session) On(event EventType, listener EventListener) {
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *Session) Emit(event EventType, data interface{}) {
	for _, listener := range s.listeners[event] {
		listener(data)
	}
}

// Tracker exposes the global paint state for read access.
func (s *Session) Tracker() *progress.Tracker { return s.tracker }

// Palette returns the color table.
func (s *Session) Palette() pbnimage.Palette { return s.palette }

// Geometry returns the section geometry.
func (s *Session) Geometry() progress.Geometry { return s.tracker.Geometry() }

// Progress returns the current completion summary.
func (s *Session) Progress() progress.Report {
	return s.tracker.Counters().Report()
}

// PaintAt paints a single global cell.
func (s *Session) PaintAt(x, y, color int) Effect {
	if !s.tracker.Paint(x, y, color) {
		return Effect{}
	}
	return s.painted("paint", []geometry.PointInt{geometry.Pt(x, y)}, color)
}

// BrushAt paints every matching cell within radius of (x, y).
func (s *Session) BrushAt(x, y, radius, color int) Effect {
	return s.painted("brush", s.tracker.Brush(x, y, radius, color), color)
}

// FillAt flood-fills the unpainted region of color connected to (x, y).
func (s *Session) FillAt(x, y, color int) Effect {
	return s.painted("fill", s.tracker.Fill(x, y, color), color)
}

func (s *Session) painted(op string, changed []geometry.PointInt, color int) Effect {
	eff := cellsEffect(changed)
	if !eff.Applied {
		return eff
	}
	s.log.WithFields(logrus.Fields{"op": op, "color": color, "cells": len(changed)}).Debug("Painted")
	s.saveGlobal()
	s.Emit(EventCellsPainted, eff)
	return eff
}

// RenderFull renders the free-paint view fitted to the display area.
func (s *Session) RenderFull(hl render.Highlight) *image.RGBA {
	return render.Render(s.tracker, s.palette, hl, render.Options{
		MaxWidth:  s.maxWidth,
		MaxHeight: s.maxHeight,
	})
}

// RenderOverview renders the full image with section separators.
func (s *Session) RenderOverview(hl render.Highlight) *image.RGBA {
	opts := render.OverviewOptions(s.Geometry().Size)
	opts.MaxWidth, opts.MaxHeight = s.maxWidth, s.maxHeight
	return render.Render(s.tracker, s.palette, hl, opts)
}

// RenderSection renders one section in the section editor style. The open
// section copy is used when id is the active section; otherwise the section
// is projected without changing the session.
func (s *Session) RenderSection(id progress.SectionID, hl render.Highlight) (*image.RGBA, error) {
	local := s.active
	if local == nil || local.ID != id {
		var err error
		if local, err = s.projectSection(id); err != nil {
			return nil, err
		}
	}
	return render.Render(local, s.palette, hl, render.SectionOptions()), nil
}

// OverviewScale returns the scale RenderOverview uses, for mapping pointer
// positions back to cells.
func (s *Session) OverviewScale() float64 {
	w, h := s.tracker.Size()
	return render.Fit(w, h, s.maxWidth, s.maxHeight)
}
