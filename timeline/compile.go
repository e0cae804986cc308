package timeline

import (
	"fmt"
	"math"
	"strconv"

	"clipforge/models"
)

// Options tune compilation without touching the timeline document itself.
type Options struct {
	// FontFile is the font used for text overlays.
	FontFile string
	// TextPosition places text elements that carry no explicit x/y offset.
	// Defaults to "center".
	TextPosition string
}

// SkippedElement records an element the compiler left out of the graph and
// why, so callers can surface or assert on skips instead of guessing.
type SkippedElement struct {
	ElementID string
	Reason    string
}

// Trace is the debug view of a compiled graph.
type Trace struct {
	Inputs     []string
	Filters    []string
	VideoLabel string
	// AudioLabel is empty when the timeline contributed no audio and a
	// silent source was injected instead.
	AudioLabel string
}

// Result is the full compilation output: the engine argument list (without
// the output path, which the caller appends) plus the trace and skip list.
type Result struct {
	Args    []string
	Trace   Trace
	Skipped []SkippedElement
}

const defaultFontFile = "/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf"

// placement pairs an element with its track kind and, for media elements,
// the resolved asset and registered input index.
type placement struct {
	element    models.Element
	trackType  string
	asset      models.MediaAsset
	inputIndex int
	isMedia    bool
}

// Compile turns a timeline document into an ordered engine argument list.
// It is pure and deterministic: inputs are registered in first-seen order
// and every label comes from one monotonic counter.
//
// Elements whose media reference does not resolve are skipped with a reason
// rather than failing the whole render. Overlapping clips stack in discovery
// order: later clips in the walk paint over earlier ones.
func Compile(doc models.ExportDocument, opts Options) Result {
	project := doc.Project
	width := project.CanvasSize.Width
	height := project.CanvasSize.Height
	fps := project.FPS
	if fps <= 0 {
		fps = 30
	}
	bgColor := project.BackgroundColor
	if bgColor == "" {
		bgColor = "#000000"
	}
	bg := hexColor(bgColor)
	if opts.FontFile == "" {
		opts.FontFile = defaultFontFile
	}

	g := &graph{}
	var skipped []SkippedElement

	// Base compositing surface: a solid color source at output geometry.
	g.addInput("-f", "lavfi", "-i", fmt.Sprintf("color=c=%s:s=%dx%d:r=%d", bg, width, height, fps))
	base := g.label("v")
	g.add([]string{"0:v"}, fmt.Sprintf("format=yuv420p,setsar=1,scale=%d:%d,fps=%d", width, height, fps), base)

	// Single walk: register one input per unique mediaId and collect every
	// renderable element with its track context.
	inputByMedia := make(map[string]int)
	var placements []placement
	for _, track := range doc.Tracks {
		for _, el := range track.Elements {
			switch el.Type {
			case models.ElementMedia:
				asset, ok := doc.MediaItems[el.MediaID]
				if !ok {
					skipped = append(skipped, SkippedElement{
						ElementID: el.ID,
						Reason:    "unresolved media reference " + el.MediaID,
					})
					continue
				}
				if _, seen := inputByMedia[el.MediaID]; !seen {
					inputByMedia[el.MediaID] = g.addInput("-i", asset.URL)
				}
				placements = append(placements, placement{
					element:    el,
					trackType:  track.Type,
					asset:      asset,
					inputIndex: inputByMedia[el.MediaID],
					isMedia:    true,
				})
			case models.ElementText:
				placements = append(placements, placement{element: el, trackType: track.Type})
			default:
				skipped = append(skipped, SkippedElement{
					ElementID: el.ID,
					Reason:    "unknown element type " + el.Type,
				})
			}
		}
	}

	current := base

	// Video pass: fit each clip to canvas, trim to its source window, shift
	// onto the absolute timeline, then composite with a time-gated overlay.
	for _, p := range placements {
		if !p.isMedia || p.asset.Type != models.MediaVideo {
			continue
		}
		el := p.element
		start := formatSeconds(el.StartTime)
		end := formatSeconds(el.StartTime + el.Duration)

		clip := g.label("v")
		tail := fmt.Sprintf("fps=%d,setsar=1", fps)
		if fx := effectChain(el.Effects); fx != "" {
			tail += "," + fx
		}
		tail += fmt.Sprintf(",trim=start=%s:end=%s,setpts=PTS-STARTPTS+%s/TB",
			formatSeconds(el.TrimStart), formatSeconds(el.TrimStart+el.Duration), start)

		src := fmt.Sprintf("%d:v", p.inputIndex)
		if project.BackgroundType == "blur" {
			// Blurred scale-to-fill backdrop behind the fitted clip.
			intensity := project.BlurIntensity
			if intensity <= 0 {
				intensity = 20
			}
			bgLab := g.label("v")
			fgLab := g.label("v")
			g.add([]string{src}, "split=2", bgLab, fgLab)
			blurLab := g.label("v")
			g.add([]string{bgLab},
				fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=increase,crop=%d:%d,boxblur=%d:%d",
					width, height, width, height, intensity, intensity), blurLab)
			fitLab := g.label("v")
			g.add([]string{fgLab},
				fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=decrease", width, height), fitLab)
			g.add([]string{blurLab, fitLab}, "overlay=(W-w)/2:(H-h)/2,"+tail, clip)
		} else {
			chain := fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2:color=%s,",
				width, height, width, height, bg) + tail
			g.add([]string{src}, chain, clip)
		}

		out := g.label("v")
		g.add([]string{current, clip},
			fmt.Sprintf("overlay=shortest=1:enable='between(t,%s,%s)'", start, end), out)
		current = out
	}

	// Image pass: aspect-preserving scale, then a positioned, time-gated
	// overlay. Position expressions reference the overlay's own measured
	// dimensions, never pre-resolved numbers.
	for _, p := range placements {
		if !p.isMedia || p.asset.Type != models.MediaImage {
			continue
		}
		el := p.element
		start := formatSeconds(el.StartTime)
		end := formatSeconds(el.StartTime + el.Duration)

		sw := p.asset.Width
		if sw <= 0 {
			sw = width
		}
		sh := "-1"
		if p.asset.Height > 0 {
			sh = strconv.Itoa(p.asset.Height)
		}
		scaled := g.label("v")
		g.add([]string{fmt.Sprintf("%d:v", p.inputIndex)},
			fmt.Sprintf("scale=%d:%s:force_original_aspect_ratio=decrease,format=rgba", sw, sh), scaled)

		x, y := positionExprs(el.Position, "W", "H", "w", "h")
		out := g.label("v")
		g.add([]string{current, scaled},
			fmt.Sprintf("overlay=x='%s':y='%s':shortest=1:enable='between(t,%s,%s)'", x, y, start, end), out)
		current = out
	}

	// Text pass: drawtext directly on the running surface.
	for _, p := range placements {
		if p.element.Type != models.ElementText {
			continue
		}
		el := p.element
		start := formatSeconds(el.StartTime)
		end := formatSeconds(el.StartTime + el.Duration)

		presetX, presetY := positionExprs(opts.TextPosition, "W", "H", "tw", "th")
		xPos := presetX
		if el.X != nil {
			xPos = formatValue(float64(width)/2 + *el.X)
		}
		yPos := presetY
		if el.Y != nil {
			yPos = formatValue(float64(height)/2 + *el.Y)
		}

		fontSize := el.FontSize
		if fontSize <= 0 {
			fontSize = 24
		}
		fontColor := el.Color
		if fontColor == "" {
			fontColor = "#ffffff"
		}
		box := "box=0:"
		if el.BackgroundColor != "" && el.BackgroundColor != "transparent" {
			box = fmt.Sprintf("box=1:boxcolor=%s:", hexColor(el.BackgroundColor))
		}

		out := g.label("v")
		g.add([]string{current},
			fmt.Sprintf("drawtext=text='%s':fontfile=%s:fontsize=%d:fontcolor=%s:%sboxborderw=5:x=%s:y=%s:enable='between(t,%s,%s)'",
				escapeText(el.Content), opts.FontFile, fontSize, hexColor(fontColor), box, xPos, yPos, start, end), out)
		current = out
	}

	// Audio pass: every audio-track element, audio asset, and unmuted video
	// contributes one trimmed, delayed stream.
	var audioLabels []string
	for _, p := range placements {
		if !p.isMedia {
			continue
		}
		contributes := p.trackType == models.TrackAudio ||
			p.asset.Type == models.MediaAudio ||
			(p.asset.Type == models.MediaVideo && !p.element.Muted)
		if !contributes {
			continue
		}
		el := p.element
		delayMS := int(math.Round(el.StartTime * 1000))
		out := g.label("a")
		g.add([]string{fmt.Sprintf("%d:a", p.inputIndex)},
			fmt.Sprintf("atrim=start=%s:end=%s,asetpts=PTS-STARTPTS,volume=1,adelay=%d|%d",
				formatSeconds(el.TrimStart), formatSeconds(el.TrimStart+el.Duration), delayMS, delayMS), out)
		audioLabels = append(audioLabels, out)
	}

	audioLabel := ""
	switch len(audioLabels) {
	case 0:
		// handled below with a silent source
	case 1:
		audioLabel = audioLabels[0]
	default:
		mixed := g.label("a")
		g.add(audioLabels,
			fmt.Sprintf("amix=inputs=%d:normalize=1:dropout_transition=2", len(audioLabels)), mixed)
		audioLabel = mixed
	}

	// Players expect an audio stream; inject a short silent source when the
	// timeline contributed none.
	silentIndex := -1
	if audioLabel == "" {
		silentIndex = g.addInput("-f", "lavfi", "-t", "0.1", "-i",
			"anullsrc=channel_layout=stereo:sample_rate=44100")
	}

	args := []string{"-y"}
	for _, in := range g.inputs {
		args = append(args, in.args...)
	}
	args = append(args, "-filter_complex", g.filterComplex())
	args = append(args, "-map", "["+current+"]")
	if audioLabel != "" {
		args = append(args, "-map", "["+audioLabel+"]")
	} else {
		args = append(args, "-map", fmt.Sprintf("%d:a", silentIndex), "-shortest")
	}
	args = append(args,
		"-c:v", "libx264",
		"-preset", "veryfast",
		"-profile:v", "high",
		"-pix_fmt", "yuv420p",
		"-r", strconv.Itoa(fps),
		"-c:a", "aac",
		"-b:a", "192k",
		"-movflags", "+faststart",
	)

	filters := make([]string, 0, len(g.filters))
	for _, f := range g.filters {
		filters = append(filters, f.serialize())
	}

	return Result{
		Args: args,
		Trace: Trace{
			Inputs:     g.inputDescriptions(),
			Filters:    filters,
			VideoLabel: current,
			AudioLabel: audioLabel,
		},
		Skipped: skipped,
	}
}
