package models

// Project holds the export-time canvas settings for a timeline.
type Project struct {
	ID              string     `json:"id,omitempty"`
	Name            string     `json:"name,omitempty"`
	CanvasSize      CanvasSize `json:"canvasSize"`
	FPS             int        `json:"fps"`                     // defaults to 30 when zero
	BackgroundColor string     `json:"backgroundColor"`         // hex, e.g. "#000000"
	BackgroundType  string     `json:"backgroundType"`          // "color" or "blur"
	BlurIntensity   int        `json:"blurIntensity,omitempty"` // boxblur strength for blur backgrounds
}

type CanvasSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Track kinds. Track order only groups elements for the compositing passes;
// element ordering within a track follows startTime, not slice position.
const (
	TrackMedia = "media"
	TrackText  = "text"
	TrackAudio = "audio"
)

// Track is an ordered sequence of elements of one kind.
type Track struct {
	ID       string    `json:"id,omitempty"`
	Type     string    `json:"type"`
	Elements []Element `json:"elements"`
}

// Element kinds.
const (
	ElementMedia = "media"
	ElementText  = "text"
)

// Element is one time-boxed instruction on a track. Media elements reference
// a MediaAsset by MediaID; text elements carry their content inline.
type Element struct {
	ID        string  `json:"id,omitempty"`
	Type      string  `json:"type"`
	StartTime float64 `json:"startTime"` // seconds from timeline zero
	Duration  float64 `json:"duration"`  // seconds
	TrimStart float64 `json:"trimStart"` // seconds cut from the source start

	// Media element fields.
	MediaID  string   `json:"mediaId,omitempty"`
	Muted    bool     `json:"muted,omitempty"`    // video elements only
	Position string   `json:"position,omitempty"` // overlay preset for images ("center", "top-left", ...)
	Effects  []Effect `json:"effects,omitempty"`

	// Text element fields.
	Content         string   `json:"content,omitempty"`
	FontSize        int      `json:"fontSize,omitempty"`
	Color           string   `json:"color,omitempty"`
	BackgroundColor string   `json:"backgroundColor,omitempty"` // "transparent" disables the box
	X               *float64 `json:"x,omitempty"`               // offset from canvas center
	Y               *float64 `json:"y,omitempty"`
}

// Effect is a simple per-element video effect. Name-only effects
// ("grayscale", "blur", "sharpen", "invert") ignore Value.
type Effect struct {
	Type  string  `json:"type"`
	Value float64 `json:"value,omitempty"`
}

// Media asset kinds.
const (
	MediaVideo = "video"
	MediaImage = "image"
	MediaAudio = "audio"
)

// MediaAsset describes one source referenced by media elements.
type MediaAsset struct {
	Type   string `json:"type"`
	URL    string `json:"url"`
	Width  int    `json:"width,omitempty"`  // natural dimensions, images
	Height int    `json:"height,omitempty"`
}

// ExportDocument is the serialized timeline the submission API stores and
// the worker later fetches: project settings, tracks, and the media lookup
// table keyed by mediaId.
type ExportDocument struct {
	Project    Project               `json:"project"`
	Tracks     []Track               `json:"tracks"`
	MediaItems map[string]MediaAsset `json:"mediaItems"`
}

// TimelineDuration returns the total duration of a timeline in seconds: the
// maximum element end time across all tracks.
func TimelineDuration(tracks []Track) float64 {
	var max float64
	for _, track := range tracks {
		for _, element := range track.Elements {
			if end := element.StartTime + element.Duration; end > max {
				max = end
			}
		}
	}
	return max
}
