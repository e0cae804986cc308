package timeline

import (
	"fmt"
	"strconv"

	"clipforge/models"
)

// effectChain maps element effects to engine filter snippets, joined with
// commas for insertion into a clip's per-element chain. Unknown effect names
// are ignored; the compiler stays total.
func effectChain(effects []models.Effect) string {
	var parts []string
	for _, e := range effects {
		switch e.Type {
		case "grayscale":
			parts = append(parts, "hue=s=0")
		case "blur":
			parts = append(parts, "gblur=sigma=10")
		case "sharpen":
			parts = append(parts, "unsharp")
		case "invert":
			parts = append(parts, "negate")
		case "brightness":
			parts = append(parts, "eq=brightness="+formatValue(e.Value))
		case "contrast":
			parts = append(parts, "eq=contrast="+formatValue(e.Value))
		case "saturation":
			parts = append(parts, "eq=saturation="+formatValue(e.Value))
		case "boxblur":
			v := e.Value
			if v <= 0 {
				v = 5
			}
			parts = append(parts, fmt.Sprintf("boxblur=%s:%s", formatValue(v), formatValue(v)))
		}
	}
	if len(parts) == 0 {
		return ""
	}
	out := parts[0]
	for _, p := range parts[1:] {
		out += "," + p
	}
	return out
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
