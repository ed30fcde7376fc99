package models

// Catalog maps the model display names offered by the upload form to the
// internal shoe identifiers the backend's reference records are keyed by.
var Catalog = map[string]string{
	"Air Jordan 1 Lost & Found": "jordan1_lost_found",
	"Travis Scott Olive":        "travis_scott_olive",
	"Yeezy 350 Zebra":           "yeezy_350_zebra",
}

// ResolveModel resolves a display name to its internal shoe identifier.
func ResolveModel(displayName string) (string, bool) {
	id, ok := Catalog[displayName]
	return id, ok
}

// ModelNames lists the display names in a stable order for the upload form.
func ModelNames() []string {
	return []string{
		"Air Jordan 1 Lost & Found",
		"Travis Scott Olive",
		"Yeezy 350 Zebra",
	}
}
