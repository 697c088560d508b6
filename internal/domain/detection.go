package domain

// BoundingBox is the square drawn around a detection, in frame pixels.
type BoundingBox struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Detection is the outcome of one successful detection cycle. The bounding box
// is cosmetic: the classifier produces no localization, so the box is a fixed
// square centered on the frame.
type Detection struct {
	Product    Product     `json:"product"`
	Label      string      `json:"label"`
	Confidence float64     `json:"confidence"`
	Box        BoundingBox `json:"box"`
}
