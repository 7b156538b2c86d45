package mercator

import (
	"math"

	"github.com/paulmach/orb"
)

const (
	// TileSize is the size in pixels of a world tile at zoom level 0
	TileSize = 512

	MaxLatitude = 85.051128779806604

	MinZoom = 0
	MaxZoom = 24
)

// Project converts a longitude/latitude to normalized world coordinates.
// x runs from 0 (180W) to 1 (180E), y from 0 (north) to 1 (south).
func Project(lon, lat float64) (x, y float64) {
	lat = ClampLatitude(lat)
	x = (lon + 180) / 360
	latRad := lat * math.Pi / 180
	y = (1 - math.Log(math.Tan(latRad)+1/math.Cos(latRad))/math.Pi) / 2
	return x, y
}

// Unproject converts normalized world coordinates back to longitude/latitude
func Unproject(x, y float64) (lon, lat float64) {
	lon = x*360 - 180
	n := math.Pi * (1 - 2*y)
	lat = math.Atan(math.Sinh(n)) * 180 / math.Pi
	return lon, lat
}

func ClampLatitude(lat float64) float64 {
	return math.Max(-MaxLatitude, math.Min(MaxLatitude, lat))
}

func ClampZoom(zoom float64) float64 {
	return math.Max(MinZoom, math.Min(MaxZoom, zoom))
}

// Transform is the camera state of a map: what it looks at, and how big the viewport is (in logical pixels)
type Transform struct {
	Width   uint32
	Height  uint32
	Center  orb.Point // [lon, lat]
	Zoom    float64
	Bearing float64 // degrees, counter-clockwise rotation of the map
	Pitch   float64 // degrees
}

func NewTransform(width, height uint32) *Transform {
	return &Transform{
		Width:  width,
		Height: height,
	}
}

func (t *Transform) Clone() *Transform {
	c := *t
	return &c
}

// WorldSize is the width of the whole world in logical pixels at the current zoom level
func (t *Transform) WorldSize() float64 {
	return TileSize * math.Exp2(t.Zoom)
}

// JumpTo sets the camera center and zoom. The latitude is clamped to the mercator bounds.
func (t *Transform) JumpTo(center orb.Point, zoom float64) {
	t.Center = orb.Point{center[0], ClampLatitude(center[1])}
	t.Zoom = ClampZoom(zoom)
}

// LonLatToScreen converts a longitude/latitude to logical pixels in the viewport, with the origin at the top left
func (t *Transform) LonLatToScreen(lon, lat float64) (float64, float64) {
	dx, dy := t.LonLatToCenterOffset(lon, lat)

	return dx + float64(t.Width)/2, dy + float64(t.Height)/2
}

// LonLatToCenterOffset converts a longitude/latitude to logical pixels relative to the viewport center, with bearing applied
func (t *Transform) LonLatToCenterOffset(lon, lat float64) (float64, float64) {
	worldSize := t.WorldSize()

	cx, cy := Project(t.Center[0], t.Center[1])
	px, py := Project(lon, lat)

	dx := (px - cx) * worldSize
	dy := (py - cy) * worldSize

	return rotate(dx, dy, -t.Bearing)
}

// CameraForBounds returns the center and zoom that fit the bounds inside the viewport,
// with padding pixels of inset on each side. The current bearing is taken into account.
func (t *Transform) CameraForBounds(bound orb.Bound, padding float64) (orb.Point, float64) {
	minX, maxY := Project(bound.Min[0], bound.Min[1])
	maxX, minY := Project(bound.Max[0], bound.Max[1])

	centerLon, centerLat := Unproject((minX+maxX)/2, (minY+maxY)/2)

	// rotate the corners to screen orientation, and find the extent
	halfW := (maxX - minX) / 2
	halfH := (maxY - minY) / 2
	var extentX, extentY float64
	for _, corner := range [][2]float64{{-halfW, -halfH}, {halfW, -halfH}, {halfW, halfH}, {-halfW, halfH}} {
		rx, ry := rotate(corner[0], corner[1], -t.Bearing)
		extentX = math.Max(extentX, math.Abs(rx))
		extentY = math.Max(extentY, math.Abs(ry))
	}

	availableWidth := float64(t.Width) - padding*2
	availableHeight := float64(t.Height) - padding*2

	if extentX == 0 || extentY == 0 || availableWidth <= 0 || availableHeight <= 0 {
		return orb.Point{centerLon, centerLat}, t.Zoom
	}

	scaleX := availableWidth / (extentX * 2 * TileSize)
	scaleY := availableHeight / (extentY * 2 * TileSize)

	zoom := ClampZoom(math.Log2(math.Min(scaleX, scaleY)))

	return orb.Point{centerLon, centerLat}, zoom
}

// VisibleBound returns the (unrotated) lon/lat area covered by the viewport
func (t *Transform) VisibleBound() orb.Bound {
	worldSize := t.WorldSize()
	cx, cy := Project(t.Center[0], t.Center[1])

	// a rotated viewport covers more ground than its width and height
	radius := math.Hypot(float64(t.Width), float64(t.Height)) / 2 / worldSize

	minLon, maxLat := Unproject(cx-radius, cy-radius)
	maxLon, minLat := Unproject(cx+radius, cy+radius)

	return orb.Bound{
		Min: orb.Point{minLon, minLat},
		Max: orb.Point{maxLon, maxLat},
	}
}

func rotate(x, y, degrees float64) (float64, float64) {
	if degrees == 0 {
		return x, y
	}
	rad := degrees * math.Pi / 180
	sin, cos := math.Sincos(rad)
	return x*cos - y*sin, x*sin + y*cos
}
