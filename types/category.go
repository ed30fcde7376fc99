package types

// Category is one of the three independent analysis dimensions. Each category
// has its own backend endpoint and its own result shape.
type Category string

const (
	CategorySneaker Category = "sneaker"
	CategoryBox     Category = "box"
	CategoryVideo   Category = "video"
)

// Categories lists the three mandatory upload slots in display order.
var Categories = []Category{CategorySneaker, CategoryBox, CategoryVideo}

// Valid reports whether c names one of the three known categories.
func (c Category) Valid() bool {
	switch c {
	case CategorySneaker, CategoryBox, CategoryVideo:
		return true
	}
	return false
}

// BackendPath returns the analysis path on the backend for this category.
func (c Category) BackendPath() string {
	switch c {
	case CategorySneaker:
		return "/analyze/sneaker_stitches"
	case CategoryBox:
		return "/analyze/box_advanced"
	case CategoryVideo:
		return "/analyze/yolo_visual"
	}
	return ""
}
