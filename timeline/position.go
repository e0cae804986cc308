package timeline

import "fmt"

// overlayMargin is the pixel margin used by the corner presets.
const overlayMargin = 20

// positionExprs returns overlay x/y expressions for a named position preset.
// W/H are the surface dimensions and w/h the overlaid stream's own measured
// dimensions; they stay symbolic so the engine resolves them per overlay.
func positionExprs(position, W, H, w, h string) (xExpr, yExpr string) {
	switch position {
	case "top-left":
		return fmt.Sprintf("%d", overlayMargin), fmt.Sprintf("%d", overlayMargin)
	case "top-right":
		return fmt.Sprintf("%s-%s-%d", W, w, overlayMargin), fmt.Sprintf("%d", overlayMargin)
	case "bottom-left":
		return fmt.Sprintf("%d", overlayMargin), fmt.Sprintf("%s-%s-%d", H, h, overlayMargin)
	case "bottom-right":
		return fmt.Sprintf("%s-%s-%d", W, w, overlayMargin), fmt.Sprintf("%s-%s-%d", H, h, overlayMargin)
	case "center", "middle", "":
		return fmt.Sprintf("(%s-%s)/2", W, w), fmt.Sprintf("(%s-%s)/2", H, h)
	default:
		return fmt.Sprintf("(%s-%s)/2", W, w), fmt.Sprintf("(%s-%s)/2", H, h)
	}
}
