package mainwindow

import (
	"testing"

	"paint-by-number/internal/app"
	pbnimage "paint-by-number/internal/image"
	"paint-by-number/internal/progress"
	"paint-by-number/internal/render"
	"paint-by-number/internal/store"
	"paint-by-number/pkg/colorutil"

	"fyne.io/fyne/v2/test"
	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

func newWindow(t *testing.T, st store.Store) *MainWindow {
	t.Helper()
	rows := make([][]int, 60)
	for y := range rows {
		rows[y] = make([]int, 60)
		for x := range rows[y] {
			rows[y][x] = x / 30
		}
	}
	img, err := pbnimage.New(rows, 2)
	require.NoError(t, err)

	log, _ := logrustest.NewNullLogger()
	s, err := app.LoadSession(img, pbnimage.Palette{colorutil.RGB(200, 0, 0), colorutil.RGB(0, 0, 200)}, st, app.WithLogger(log))
	require.NoError(t, err)

	mw := New(test.NewApp(), s, log)
	t.Cleanup(mw.Window.Close)
	return mw
}

func TestFreePaint(t *testing.T) {
	mw := newWindow(t, store.NewMemory())
	require.Equal(t, ViewFree, mw.view)

	mw.onCanvasTap(5, 5)
	require.Equal(t, "Select a color first", mw.statusBar.Text)
	require.Equal(t, 0, mw.session.Progress().Painted)

	mw.palette.Select(0)
	mw.onCanvasTap(5.5, 5.2)
	require.True(t, mw.session.Tracker().CellAt(5, 5).IsPainted())
	require.Equal(t, mw.session.Palette()[0], mw.raster.RGBAAt(5, 5), "raster updated in place")

	mw.onCanvasDrag(10, 10)
	require.True(t, mw.session.Tracker().CellAt(10, 10).IsPainted())
	require.Greater(t, mw.progressBar.Value, 0.0)
}

func TestSectionWorkflow(t *testing.T) {
	st := store.NewMemory()
	mw := newWindow(t, st)
	mw.palette.Select(1)

	mw.viewRadio.SetSelected(labelSections)
	require.Equal(t, ViewOverview, mw.view)

	scale := mw.session.OverviewScale()
	mw.onCanvasTap(55*scale, 5*scale)
	require.Equal(t, ViewSection, mw.view)
	require.Equal(t, progress.SectionID{X: 1, Y: 0}, mw.section.ID)

	// Local (0,5) is global (50,5), color 1.
	mw.onCanvasTap(float64(render.SectionCellSize)/2, float64(5*render.SectionCellSize))
	require.Equal(t, 10*50, mw.session.Tracker().Counters().Painted(1))

	mw.viewRadio.SetSelected(labelFree)
	require.Equal(t, ViewFree, mw.view)
	require.Nil(t, mw.section)
	_, ok := mw.session.SelectedSection()
	require.False(t, ok)
}

func TestReopensSelectedSection(t *testing.T) {
	st := store.NewMemory()
	st.Set(store.KeySelectedSection, `{"x":0,"y":1}`)
	mw := newWindow(t, st)
	require.Equal(t, ViewSection, mw.view)
	require.Equal(t, progress.SectionID{Y: 1}, mw.section.ID)
}
