package geo

// BBox is a geographic bounding box in degrees.
type BBox struct {
	West  float64
	South float64
	East  float64
	North float64
}

// PointBBox returns a square bounding box centered on (lat, lon) extending
// halfDeg degrees in each direction.
func PointBBox(lat, lon, halfDeg float64) BBox {
	return BBox{
		West:  lon - halfDeg,
		South: lat - halfDeg,
		East:  lon + halfDeg,
		North: lat + halfDeg,
	}
}
