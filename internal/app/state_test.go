package app

import (
	"encoding/json"
	"errors"
	"testing"

	pbnimage "paint-by-number/internal/image"
	"paint-by-number/internal/progress"
	"paint-by-number/internal/render"
	"paint-by-number/internal/store"
	"paint-by-number/pkg/colorutil"
	"paint-by-number/pkg/geometry"

	"github.com/sirupsen/logrus"
	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

// flakyStore wraps a Memory store and fails on demand.
type flakyStore struct {
	*store.Memory
	failGet bool
	failSet bool
}

func (f *flakyStore) Get(key string) (string, bool, error) {
	if f.failGet {
		return "", false, errBoom
	}
	return f.Memory.Get(key)
}

func (f *flakyStore) Set(key, value string) error {
	if f.failSet {
		return errBoom
	}
	return f.Memory.Set(key, value)
}

func testPalette(k int) pbnimage.Palette {
	pal := make(pbnimage.Palette, k)
	for i := range pal {
		pal[i] = colorutil.RGB(uint8(40*i), 0, uint8(255-40*i))
	}
	return pal
}

func genImage(t *testing.T, w, h, k int, f func(x, y int) int) *pbnimage.Indexed {
	t.Helper()
	rows := make([][]int, h)
	for y := range rows {
		rows[y] = make([]int, w)
		for x := range rows[y] {
			rows[y][x] = f(x, y)
		}
	}
	img, err := pbnimage.New(rows, k)
	require.NoError(t, err)
	return img
}

func zero(x, y int) int { return 0 }

type fixture struct {
	session  *Session
	store    store.Store
	hook     *logrustest.Hook
	warnings []Warning
}

func newFixture(t *testing.T, img *pbnimage.Indexed, st store.Store) *fixture {
	t.Helper()
	logger, hook := logrustest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	f := &fixture{store: st, hook: hook}
	s, err := LoadSession(img, testPalette(img.Colors()), st,
		WithLogger(logger),
		WithListener(EventWarning, func(data interface{}) {
			f.warnings = append(f.warnings, data.(Warning))
		}),
	)
	require.NoError(t, err)
	f.session = s
	return f
}

func requireConsistent(t *testing.T, s *Session) {
	t.Helper()
	tr := s.Tracker()
	w, h := tr.Size()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if col, ok := tr.CellAt(x, y).Color(); ok {
				require.Equal(t, tr.ColorAt(x, y), col)
			}
		}
	}
	require.Equal(t, tr.Overlay().Counts(tr.Base().Colors()), tr.Counters().PaintedCounts())
}

func TestLoadSessionErrors(t *testing.T) {
	img := genImage(t, 2, 2, 2, zero)

	_, err := LoadSession(img, testPalette(3), nil)
	require.ErrorIs(t, err, ErrPaletteMismatch)

	_, err = LoadSession(img, nil, nil)
	require.ErrorIs(t, err, pbnimage.ErrEmptyPalette)

	_, err = LoadSession(nil, testPalette(2), nil)
	require.ErrorIs(t, err, pbnimage.ErrEmpty)

	_, err = LoadSourceSession(nil, nil)
	require.ErrorIs(t, err, pbnimage.ErrEmpty)
}

func TestFreshSession(t *testing.T) {
	img := genImage(t, 4, 4, 2, func(x, y int) int { return x % 2 })
	f := newFixture(t, img, store.NewMemory())

	rep := f.session.Progress()
	require.Equal(t, 0, rep.Painted)
	require.Equal(t, 16, rep.Total)
	require.Equal(t, []int{8, 8}, f.session.Tracker().Counters().Totals())
	require.Empty(t, f.warnings, "first run is not a warning")
}

func TestFillWholeImageSession(t *testing.T) {
	f := newFixture(t, genImage(t, 10, 10, 1, zero), store.NewMemory())

	eff := f.session.FillAt(0, 0, 0)
	require.True(t, eff.Applied)
	require.Len(t, eff.Changed, 100)
	require.Equal(t, 100, f.session.Tracker().Counters().Painted(0))

	require.False(t, f.session.FillAt(0, 0, 0).Applied)
	require.True(t, f.session.Progress().Complete())
}

func TestPaintPersistsAndRestores(t *testing.T) {
	img := genImage(t, 3, 3, 2, func(x, y int) int { return y % 2 })
	st := store.NewMemory()
	f := newFixture(t, img, st)

	require.True(t, f.session.PaintAt(1, 1, 1).Applied)
	require.False(t, f.session.PaintAt(1, 1, 1).Applied, "already painted")
	require.False(t, f.session.PaintAt(0, 0, 1).Applied, "wrong color")
	require.False(t, f.session.PaintAt(9, 9, 0).Applied, "out of bounds")
	require.True(t, f.session.BrushAt(1, 0, 1, 0).Applied)

	overlay, ok, err := st.Get(store.KeyOverlay)
	require.NoError(t, err)
	require.True(t, ok)
	require.JSONEq(t, `[[1,1,1],[0,2,0],[0,0,0]]`, overlay)

	painted, _, _ := st.Get(store.KeyPaintedCounts)
	require.JSONEq(t, `[3,1]`, painted)
	total, _, _ := st.Get(store.KeyTotalCounts)
	require.JSONEq(t, `[6,3]`, total)

	again := newFixture(t, img, st)
	require.Equal(t, progress.Painted(1), again.session.Tracker().CellAt(1, 1))
	require.Equal(t, []int{3, 1}, again.session.Tracker().Counters().PaintedCounts())
	require.Empty(t, again.warnings)
}

func TestLoadsBrowserStyleDump(t *testing.T) {
	img := genImage(t, 3, 2, 2, func(x, y int) int { return x / 2 })
	st := store.NewMemory()
	st.Set(store.KeyOverlay, `[[false,1,null],[1]]`)
	st.Set(store.KeyPaintedCounts, `[2,0]`)

	f := newFixture(t, img, st)
	require.Equal(t, []int{2, 0}, f.session.Tracker().Counters().PaintedCounts())
	require.Equal(t, progress.Painted(0), f.session.Tracker().CellAt(0, 1))
	require.Empty(t, f.warnings)
}

func TestCorruptStoredState(t *testing.T) {
	img := genImage(t, 5, 5, 1, zero)

	t.Run("overlay", func(t *testing.T) {
		st := store.NewMemory()
		st.Set(store.KeyOverlay, `{broken`)
		f := newFixture(t, img, st)

		require.Len(t, f.warnings, 1)
		require.Equal(t, store.KeyOverlay, f.warnings[0].Key)
		require.Equal(t, 0, f.session.Progress().Painted)
		require.True(t, f.session.PaintAt(0, 0, 0).Applied)
	})

	t.Run("counters disagree", func(t *testing.T) {
		st := store.NewMemory()
		st.Set(store.KeyOverlay, `[[1,1]]`)
		st.Set(store.KeyPaintedCounts, `[7]`)
		st.Set(store.KeyTotalCounts, `[3]`)
		f := newFixture(t, img, st)

		require.Equal(t, []int{2}, f.session.Tracker().Counters().PaintedCounts())
		require.Equal(t, []int{25}, f.session.Tracker().Counters().Totals())
		require.Len(t, f.warnings, 2)
		requireConsistent(t, f.session)
	})

	t.Run("counters unparsable", func(t *testing.T) {
		st := store.NewMemory()
		st.Set(store.KeyPaintedCounts, `nope`)
		f := newFixture(t, img, st)

		require.Equal(t, []int{0}, f.session.Tracker().Counters().PaintedCounts())
		require.NotEmpty(t, f.warnings)
	})
}

func TestStoreReadFailureFallsBack(t *testing.T) {
	st := &flakyStore{Memory: store.NewMemory(), failGet: true}
	st.Memory.Set(store.KeyOverlay, `[[1]]`)

	f := newFixture(t, genImage(t, 2, 2, 1, zero), st)
	require.Equal(t, 0, f.session.Progress().Painted)
	require.NotEmpty(t, f.warnings)
	require.ErrorIs(t, f.warnings[0], errBoom)
}

func TestStoreWriteFailureKeepsPainting(t *testing.T) {
	st := &flakyStore{Memory: store.NewMemory(), failSet: true}
	f := newFixture(t, genImage(t, 4, 4, 1, zero), st)

	eff := f.session.FillAt(0, 0, 0)
	require.True(t, eff.Applied)
	require.Equal(t, 16, f.session.Progress().Painted)
	require.NotEmpty(t, f.warnings)
	require.ErrorIs(t, f.session.Save(), errBoom)

	var warned bool
	for _, e := range f.hook.AllEntries() {
		if e.Level == logrus.WarnLevel && e.Data["key"] == store.KeyOverlay {
			warned = true
		}
	}
	require.True(t, warned)

	st.failSet = false
	require.NoError(t, f.session.Save())
	v, ok, _ := st.Get(store.KeyPaintedCounts)
	require.True(t, ok)
	require.JSONEq(t, `[16]`, v)
}

func TestSectionPaintMergesToGlobal(t *testing.T) {
	f := newFixture(t, genImage(t, 100, 100, 1, zero), store.NewMemory())
	id := progress.SectionID{X: 1, Y: 1}

	local, err := f.session.EnterSection(id)
	require.NoError(t, err)
	selected, ok := f.session.SelectedSection()
	require.True(t, ok)
	require.Equal(t, id, selected)

	eff := f.session.PaintInSection(local, 25, 25, 0)
	require.True(t, eff.Applied)
	require.Equal(t, []geometry.PointInt{geometry.Pt(75, 75)}, eff.Changed)

	f.session.LeaveSection(id, local)
	require.Equal(t, progress.Painted(0), f.session.Tracker().CellAt(75, 75))
	require.Equal(t, 1, f.session.Progress().Painted)

	_, ok = f.session.SelectedSection()
	require.False(t, ok)
	stored, ok, _ := f.store.Get(store.SectionKey(id))
	require.True(t, ok)
	require.NotEmpty(t, stored)
}

func TestSectionMergeKeepsFreePaint(t *testing.T) {
	img := genImage(t, 60, 60, 2, func(x, y int) int {
		if x < 30 {
			return 0
		}
		return 1
	})
	f := newFixture(t, img, store.NewMemory())
	require.True(t, f.session.PaintAt(10, 10, 0).Applied)

	id := progress.SectionID{}
	local, err := f.session.EnterSection(id)
	require.NoError(t, err)
	require.True(t, local.CellAt(10, 10).IsPainted())

	require.True(t, f.session.FillInSection(local, 40, 0, 1).Applied)
	require.False(t, f.session.FillInSection(local, 40, 0, 1).Applied)
	f.session.LeaveSection(id, local)

	require.Equal(t, progress.Painted(0), f.session.Tracker().CellAt(10, 10))
	require.Equal(t, []int{1, 1000}, f.session.Tracker().Counters().PaintedCounts())
	requireConsistent(t, f.session)
}

func TestLeaveWithStaleCopyNeverErases(t *testing.T) {
	f := newFixture(t, genImage(t, 50, 50, 1, zero), store.NewMemory())
	id := progress.SectionID{}
	local, err := f.session.EnterSection(id)
	require.NoError(t, err)

	// Free paint happens while the section copy is open.
	f.session.FillAt(5, 5, 0)
	f.session.LeaveSection(id, local)
	require.Equal(t, 2500, f.session.Progress().Painted)
}

func TestLeaveMismatchedSection(t *testing.T) {
	f := newFixture(t, genImage(t, 100, 50, 1, zero), store.NewMemory())
	local, err := f.session.EnterSection(progress.SectionID{})
	require.NoError(t, err)
	local.Paint(0, 0, 0)

	eff := f.session.LeaveSection(progress.SectionID{X: 1}, local)
	require.False(t, eff.Applied)
	require.Equal(t, 0, f.session.Progress().Painted)
}

func TestEnterSectionOutOfRange(t *testing.T) {
	f := newFixture(t, genImage(t, 10, 10, 1, zero), store.NewMemory())
	_, err := f.session.EnterSection(progress.SectionID{X: 1})
	require.ErrorIs(t, err, progress.ErrSectionRange)
	_, err = f.session.RenderSection(progress.SectionID{Y: -1}, render.NoHighlight)
	require.ErrorIs(t, err, progress.ErrSectionRange)
}

func TestStoredSectionProgressIsAbsorbed(t *testing.T) {
	img := genImage(t, 50, 50, 1, zero)
	st := store.NewMemory()
	id := progress.SectionID{}
	st.Set(store.SectionKey(id), `[[0,1,1]]`)

	f := newFixture(t, img, st)
	local, err := f.session.EnterSection(id)
	require.NoError(t, err)
	require.Equal(t, 2, local.PaintedCount())
	require.Equal(t, 0, f.session.Progress().Painted, "not global until merged")

	eff := f.session.LeaveSection(id, local)
	require.Len(t, eff.Changed, 2)
	require.Equal(t, 2, f.session.Progress().Painted)
}

func TestMalformedSectionProgressIsAbsent(t *testing.T) {
	st := store.NewMemory()
	id := progress.SectionID{}
	st.Set(store.SectionKey(id), `{"not":"a grid"}`)

	f := newFixture(t, genImage(t, 10, 10, 1, zero), st)
	local, err := f.session.EnterSection(id)
	require.NoError(t, err)
	require.Equal(t, 0, local.PaintedCount())
	require.Len(t, f.warnings, 1)
	require.Equal(t, store.SectionKey(id), f.warnings[0].Key)
}

func TestResetSectionLeavesGlobal(t *testing.T) {
	f := newFixture(t, genImage(t, 50, 50, 1, zero), store.NewMemory())
	id := progress.SectionID{}
	local, err := f.session.EnterSection(id)
	require.NoError(t, err)
	f.session.FillInSection(local, 0, 0, 0)
	require.Equal(t, 2500, f.session.Progress().Painted)

	eff := f.session.ResetSection(local)
	require.True(t, eff.Full)
	require.Equal(t, 0, local.PaintedCount())
	require.Equal(t, 2500, f.session.Progress().Painted, "global overlay keeps the section's paint")

	stored, _, _ := f.store.Get(store.SectionKey(id))
	s, _, err := progress.DecodeSection([]byte(stored), f.session.Tracker().Base(), f.session.Geometry(), id)
	require.NoError(t, err)
	require.Equal(t, 0, s.PaintedCount())

	f.session.LeaveSection(id, local)
	again, err := f.session.EnterSection(id)
	require.NoError(t, err)
	require.Equal(t, 2500, again.PaintedCount(), "re-entering projects global paint back in")
}

func TestResetAll(t *testing.T) {
	img := genImage(t, 60, 60, 3, func(x, y int) int { return (x / 20) % 3 })
	st := store.NewMemory()
	f := newFixture(t, img, st)
	totals := f.session.Tracker().Counters().Totals()

	f.session.FillAt(0, 0, 0)
	f.session.PaintAt(59, 59, 2)
	local, err := f.session.EnterSection(progress.SectionID{X: 1, Y: 1})
	require.NoError(t, err)
	f.session.FillInSection(local, 0, 0, img.At(50, 50))

	var resets int
	f.session.On(EventProgressReset, func(interface{}) { resets++ })
	eff := f.session.ResetAll()
	require.True(t, eff.Full)
	require.Equal(t, 1, resets)

	require.Equal(t, []int{0, 0, 0}, f.session.Tracker().Counters().PaintedCounts())
	require.Equal(t, totals, f.session.Tracker().Counters().Totals())
	require.Equal(t, 0, local.PaintedCount())
	for _, key := range st.Keys() {
		require.False(t, store.IsSectionKey(key), key)
		require.NotEqual(t, store.KeyOverlay, key)
	}
	requireConsistent(t, f.session)

	again := newFixture(t, img, st)
	require.Equal(t, 0, again.session.Progress().Painted)
	require.Equal(t, totals, again.session.Tracker().Counters().Totals())
}

func TestEvents(t *testing.T) {
	f := newFixture(t, genImage(t, 10, 10, 1, zero), store.NewMemory())

	var got []Effect
	f.session.On(EventCellsPainted, func(data interface{}) { got = append(got, data.(Effect)) })
	f.session.PaintAt(0, 0, 0)
	f.session.PaintAt(0, 0, 0)
	f.session.FillAt(5, 5, 0)

	require.Len(t, got, 2)
	require.Len(t, got[0].Changed, 1)
	require.Len(t, got[1].Changed, 99)
}

func TestRenders(t *testing.T) {
	f := newFixture(t, genImage(t, 120, 70, 1, zero), store.NewMemory())

	full := f.session.RenderFull(render.HighlightColor(0))
	require.Equal(t, 180, full.Bounds().Dx())
	require.Equal(t, colorutil.Highlight, full.RGBAAt(10, 10))

	over := f.session.RenderOverview(render.NoHighlight)
	require.Equal(t, full.Bounds(), over.Bounds())

	edge, err := f.session.RenderSection(progress.SectionID{X: 2, Y: 1}, render.NoHighlight)
	require.NoError(t, err)
	require.Equal(t, 20*render.SectionCellSize, edge.Bounds().Dx())

	id, ok := f.session.SectionAt(160, 10)
	require.True(t, ok)
	require.Equal(t, progress.SectionID{X: 2, Y: 0}, id)
	_, ok = f.session.SectionAt(500, 10)
	require.False(t, ok)
	_, ok = f.session.SectionAt(-1, 10)
	require.False(t, ok)
}

func TestRenderSectionUsesActiveCopy(t *testing.T) {
	f := newFixture(t, genImage(t, 50, 50, 1, zero), store.NewMemory())
	id := progress.SectionID{}
	local, err := f.session.EnterSection(id)
	require.NoError(t, err)
	local.Paint(0, 0, 0) // not yet saved

	img, err := f.session.RenderSection(id, render.NoHighlight)
	require.NoError(t, err)
	require.Equal(t, f.session.Palette()[0], img.RGBAAt(2, 2))
}

func TestSelectedSectionIgnoresGarbage(t *testing.T) {
	st := store.NewMemory()
	st.Set(store.KeySelectedSection, `{"x":9,"y":9}`)
	f := newFixture(t, genImage(t, 10, 10, 1, zero), st)
	_, ok := f.session.SelectedSection()
	require.False(t, ok)

	data, _ := json.Marshal(progress.SectionID{})
	st.Set(store.KeySelectedSection, string(data))
	id, ok := f.session.SelectedSection()
	require.True(t, ok)
	require.Equal(t, progress.SectionID{}, id)
}

func TestFillAfterSectionResetReportsLocalPaint(t *testing.T) {
	f := newFixture(t, genImage(t, 10, 10, 1, zero), store.NewMemory())
	id := progress.SectionID{}
	local, err := f.session.EnterSection(id)
	require.NoError(t, err)
	require.True(t, f.session.FillInSection(local, 0, 0, 0).Applied)

	f.session.ResetSection(local)
	require.Equal(t, 100, f.session.Progress().Painted)

	var merged int
	f.session.On(EventCellsPainted, func(interface{}) { merged++ })
	eff := f.session.FillInSection(local, 0, 0, 0)
	require.True(t, eff.Applied, "the local copy was repainted")
	require.Len(t, eff.Changed, 100)
	require.Equal(t, 100, local.PaintedCount())
	require.Zero(t, merged, "the global overlay already held every cell")

	f.session.ResetSection(local)
	eff = f.session.PaintInSection(local, 3, 4, 0)
	require.True(t, eff.Applied)
	require.Equal(t, []geometry.PointInt{geometry.Pt(3, 4)}, eff.Changed)
}

func TestSectionEffectUsesGlobalCoordinates(t *testing.T) {
	f := newFixture(t, genImage(t, 60, 60, 1, zero), store.NewMemory())
	local, err := f.session.EnterSection(progress.SectionID{X: 1, Y: 1})
	require.NoError(t, err)

	eff := f.session.FillInSection(local, 0, 0, 0)
	require.Len(t, eff.Changed, 100)
	for _, p := range eff.Changed {
		require.GreaterOrEqual(t, p.X, 50)
		require.GreaterOrEqual(t, p.Y, 50)
		require.True(t, f.session.Tracker().CellAt(p.X, p.Y).IsPainted())
	}
}

func TestEnterSectionMergesOpenCopy(t *testing.T) {
	f := newFixture(t, genImage(t, 100, 50, 1, zero), store.NewMemory())
	first, err := f.session.EnterSection(progress.SectionID{})
	require.NoError(t, err)
	first.Paint(7, 7, 0) // edited but not saved

	second, err := f.session.EnterSection(progress.SectionID{X: 1})
	require.NoError(t, err)
	require.Equal(t, progress.SectionID{X: 1}, second.ID)
	require.Equal(t, progress.Painted(0), f.session.Tracker().CellAt(7, 7))

	var warned bool
	for _, e := range f.hook.AllEntries() {
		if e.Level == logrus.WarnLevel && e.Data["open"] == first.ID.String() {
			warned = true
		}
	}
	require.True(t, warned)
}
