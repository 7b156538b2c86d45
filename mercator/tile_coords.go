package mercator

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
)

// LonLatToTile returns the XYZ tile containing the point at a zoom level
func LonLatToTile(lon, lat float64, zoomLevel uint32) maptile.Tile {
	return maptile.At(orb.Point{lon, ClampLatitude(lat)}, maptile.Zoom(zoomLevel))
}

// TileToBound returns the lon/lat area covered by an XYZ tile
func TileToBound(x, y, zoomLevel uint32) orb.Bound {
	return maptile.New(x, y, maptile.Zoom(zoomLevel)).Bound()
}

// FlipY converts between the XYZ and TMS tile row schemes
func FlipY(y, zoomLevel uint32) uint32 {
	return (1 << zoomLevel) - y - 1
}

func IsValidTile(x, y, zoomLevel uint32) bool {
	return zoomLevel < 32 && x < (1<<zoomLevel) && y < (1<<zoomLevel)
}
