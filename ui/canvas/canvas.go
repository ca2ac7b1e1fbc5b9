// Package canvas provides a zoomable raster view that reports taps and
// drags in image pixel coordinates.
package canvas

import (
	"image"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	xdraw "golang.org/x/image/draw"
)

const (
	minZoom  = 0.1
	maxZoom  = 40.0
	zoomStep = 1.25
)

// PaintCanvas displays an image at a zoom factor inside a scroll container.
type PaintCanvas struct {
	widget.BaseWidget

	img  *image.RGBA
	zoom float64

	raster  *fynecanvas.Raster
	scroll  *zoomScroll
	content *draggableContent
	imgSize fyne.Size

	dragging bool

	onZoomChange func(zoom float64)
	onTap        func(x, y float64)
	onDrag       func(x, y float64)
	onDragEnd    func()
}

// zoomScroll wraps a scroll container but uses the wheel for zoom.
type zoomScroll struct {
	widget.BaseWidget
	scroll *container.Scroll
	canvas *PaintCanvas
}

func newZoomScroll(content fyne.CanvasObject, canvas *PaintCanvas) *zoomScroll {
	scroll := container.NewScroll(content)
	scroll.Direction = container.ScrollBoth
	zs := &zoomScroll{scroll: scroll, canvas: canvas}
	zs.ExtendBaseWidget(zs)
	return zs
}

func (zs *zoomScroll) Scrolled(ev *fyne.ScrollEvent) {
	if ev.Scrolled.DY > 0 {
		zs.canvas.ZoomIn()
	} else if ev.Scrolled.DY < 0 {
		zs.canvas.ZoomOut()
	}
}

func (zs *zoomScroll) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(zs.scroll)
}

func (zs *zoomScroll) Refresh() {
	zs.scroll.Refresh()
	zs.BaseWidget.Refresh()
}

func (zs *zoomScroll) Resize(size fyne.Size) {
	zs.scroll.Resize(size)
	zs.BaseWidget.Resize(size)
}

// draggableContent wraps the raster to handle pointer events.
type draggableContent struct {
	widget.BaseWidget
	canvas *PaintCanvas
	raster *fynecanvas.Raster
}

func newDraggableContent(pc *PaintCanvas, raster *fynecanvas.Raster) *draggableContent {
	dc := &draggableContent{canvas: pc, raster: raster}
	dc.ExtendBaseWidget(dc)
	return dc
}

func (dc *draggableContent) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(dc.raster)
}

func (dc *draggableContent) MinSize() fyne.Size {
	return dc.raster.MinSize()
}

func (dc *draggableContent) Scrolled(ev *fyne.ScrollEvent) {
	if ev.Scrolled.DY > 0 {
		dc.canvas.ZoomIn()
	} else if ev.Scrolled.DY < 0 {
		dc.canvas.ZoomOut()
	}
}

// Tapped reports a click in image coordinates.
func (dc *draggableContent) Tapped(ev *fyne.PointEvent) {
	if dc.canvas.onTap == nil {
		return
	}
	if x, y, ok := dc.canvas.imagePos(ev.Position); ok {
		dc.canvas.onTap(x, y)
	}
}

// Dragged reports every pointer position of a drag stroke.
func (dc *draggableContent) Dragged(ev *fyne.DragEvent) {
	if dc.canvas.onDrag == nil {
		return
	}
	dc.canvas.dragging = true
	if x, y, ok := dc.canvas.imagePos(ev.Position); ok {
		dc.canvas.onDrag(x, y)
	}
}

func (dc *draggableContent) DragEnd() {
	if !dc.canvas.dragging {
		return
	}
	dc.canvas.dragging = false
	if dc.canvas.onDragEnd != nil {
		dc.canvas.onDragEnd()
	}
}

// NewPaintCanvas creates an empty canvas.
func NewPaintCanvas() *PaintCanvas {
	pc := &PaintCanvas{
		zoom:    1.0,
		imgSize: fyne.NewSize(400, 300),
	}

	pc.raster = fynecanvas.NewRaster(pc.draw)
	pc.raster.ScaleMode = fynecanvas.ImageScalePixels
	pc.raster.SetMinSize(pc.imgSize)

	pc.content = newDraggableContent(pc, pc.raster)
	pc.scroll = newZoomScroll(pc.content, pc)

	pc.ExtendBaseWidget(pc)
	return pc
}

// Container returns the canvas container for embedding in layouts.
func (pc *PaintCanvas) Container() fyne.CanvasObject {
	return pc.scroll
}

// SetImage replaces the displayed image and its zoom.
func (pc *PaintCanvas) SetImage(img *image.RGBA, zoom float64) {
	pc.img = img
	pc.SetZoom(zoom)
}

// Image returns the displayed image. Callers may modify it in place and
// then call Refresh.
func (pc *PaintCanvas) Image() *image.RGBA {
	return pc.img
}

// SetZoom sets the display scale of one image pixel.
func (pc *PaintCanvas) SetZoom(zoom float64) {
	pc.zoom = min(max(zoom, minZoom), maxZoom)
	pc.updateContentSize()

	if pc.onZoomChange != nil {
		pc.onZoomChange(pc.zoom)
	}
}

// Zoom returns the current zoom level.
func (pc *PaintCanvas) Zoom() float64 {
	return pc.zoom
}

// ZoomIn increases the zoom level.
func (pc *PaintCanvas) ZoomIn() {
	pc.SetZoom(pc.zoom * zoomStep)
}

// ZoomOut decreases the zoom level.
func (pc *PaintCanvas) ZoomOut() {
	pc.SetZoom(pc.zoom / zoomStep)
}

// OnZoomChange sets a callback for zoom changes.
func (pc *PaintCanvas) OnZoomChange(callback func(zoom float64)) {
	pc.onZoomChange = callback
}

// OnTap sets a callback for clicks, in image coordinates.
func (pc *PaintCanvas) OnTap(callback func(x, y float64)) {
	pc.onTap = callback
}

// OnDrag sets a callback for drag positions, in image coordinates.
func (pc *PaintCanvas) OnDrag(callback func(x, y float64)) {
	pc.onDrag = callback
}

// OnDragEnd sets a callback for the end of a drag stroke.
func (pc *PaintCanvas) OnDragEnd(callback func()) {
	pc.onDragEnd = callback
}

// Refresh redraws the image.
func (pc *PaintCanvas) Refresh() {
	pc.raster.Refresh()
}

// imagePos converts a position on the content to image pixels.
func (pc *PaintCanvas) imagePos(pos fyne.Position) (float64, float64, bool) {
	if pc.img == nil {
		return 0, 0, false
	}
	return toImage(pos, pc.content.Size(), pc.img.Bounds())
}

// toImage maps a position inside a widget of the given size onto an image
// stretched over it. Positions outside the widget are rejected.
func toImage(pos fyne.Position, size fyne.Size, b image.Rectangle) (float64, float64, bool) {
	if size.Width <= 0 || size.Height <= 0 ||
		pos.X < 0 || pos.Y < 0 || pos.X >= size.Width || pos.Y >= size.Height {
		return 0, 0, false
	}
	x := float64(pos.X) / float64(size.Width) * float64(b.Dx())
	y := float64(pos.Y) / float64(size.Height) * float64(b.Dy())
	return x, y, true
}

func (pc *PaintCanvas) updateContentSize() {
	if pc.img == nil {
		pc.imgSize = fyne.NewSize(400, 300)
	} else {
		b := pc.img.Bounds()
		pc.imgSize = fyne.NewSize(float32(float64(b.Dx())*pc.zoom), float32(float64(b.Dy())*pc.zoom))
	}

	pc.raster.SetMinSize(pc.imgSize)
	pc.raster.Resize(pc.imgSize)
	if pc.content != nil {
		pc.content.Resize(pc.imgSize)
		pc.content.Refresh()
	}
	pc.raster.Refresh()
	if pc.scroll != nil {
		pc.scroll.Refresh()
	}
}

// draw is the raster drawing function.
func (pc *PaintCanvas) draw(w, h int) image.Image {
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	if pc.img == nil || w <= 0 || h <= 0 {
		return out
	}
	if pc.img.Bounds().Size() == out.Bounds().Size() {
		return pc.img
	}
	xdraw.NearestNeighbor.Scale(out, out.Bounds(), pc.img, pc.img.Bounds(), xdraw.Src, nil)
	return out
}

// CreateRenderer implements fyne.Widget.
func (pc *PaintCanvas) CreateRenderer() fyne.WidgetRenderer {
	return &paintCanvasRenderer{canvas: pc}
}

type paintCanvasRenderer struct {
	canvas *PaintCanvas
}

func (r *paintCanvasRenderer) Layout(size fyne.Size) {
	r.canvas.scroll.Resize(size)
}

func (r *paintCanvasRenderer) MinSize() fyne.Size {
	return fyne.NewSize(100, 100)
}

func (r *paintCanvasRenderer) Refresh() {
	r.canvas.raster.Refresh()
}

func (r *paintCanvasRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.canvas.scroll}
}

func (r *paintCanvasRenderer) Destroy() {}
