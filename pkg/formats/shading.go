package formats

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownShading is returned by ParseShading for unrecognised names.
var ErrUnknownShading = errors.New("unknown shading mode")

// Shading selects how imported objects are shaded.
type Shading int

const (
	ShadingFile   Shading = iota // Keep the per-object "s" state from the file
	ShadingFlat                  // Force flat shading
	ShadingSmooth                // Force smooth shading
)

// String returns a human-readable shading name.
func (s Shading) String() string {
	switch s {
	case ShadingFile:
		return "file"
	case ShadingFlat:
		return "flat"
	case ShadingSmooth:
		return "smooth"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// ParseShading parses "file", "flat" or "smooth". An empty string means
// ShadingFile.
func ParseShading(name string) (Shading, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "file":
		return ShadingFile, nil
	case "flat":
		return ShadingFlat, nil
	case "smooth":
		return ShadingSmooth, nil
	default:
		return ShadingFile, fmt.Errorf("%w: %q", ErrUnknownShading, name)
	}
}

// Reshade converts every object to the given shading in place.
// ShadingFile leaves objects as parsed.
func (o *OBJ) Reshade(s Shading) {
	for i := range o.Objects {
		obj := &o.Objects[i]
		switch s {
		case ShadingFlat:
			obj.Mesh.FlatShade()
			obj.Smooth = false
		case ShadingSmooth:
			obj.Mesh.SmoothShade()
			obj.Smooth = true
		}
	}
}
