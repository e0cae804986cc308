package timeline

import (
	"strings"
	"testing"

	"clipforge/models"
)

func testProject() models.Project {
	return models.Project{
		CanvasSize:      models.CanvasSize{Width: 1920, Height: 1080},
		FPS:             30,
		BackgroundColor: "#000000",
		BackgroundType:  "color",
	}
}

func argValue(t *testing.T, args []string, flag string) string {
	t.Helper()
	for i, a := range args {
		if a == flag && i+1 < len(args) {
			return args[i+1]
		}
	}
	t.Fatalf("flag %s not found in args: %v", flag, args)
	return ""
}

func countInputs(args []string) int {
	n := 0
	for _, a := range args {
		if a == "-i" {
			n++
		}
	}
	return n
}

func TestCompileEmptyTimeline(t *testing.T) {
	doc := models.ExportDocument{Project: testProject()}
	res := Compile(doc, Options{})

	// Base color surface plus the injected silent source, nothing else.
	if got := countInputs(res.Args); got != 2 {
		t.Errorf("Expected 2 inputs (base + silence), got %d", got)
	}
	if len(res.Skipped) != 0 {
		t.Errorf("Expected no skipped elements, got %v", res.Skipped)
	}
	if res.Trace.AudioLabel != "" {
		t.Errorf("Expected no audio label for empty timeline, got %s", res.Trace.AudioLabel)
	}

	fc := argValue(t, res.Args, "-filter_complex")
	if !strings.Contains(fc, "color") && !strings.Contains(res.Args[3], "color") {
		t.Error("Base color source missing")
	}
	if !strings.HasSuffix(fc, "["+res.Trace.VideoLabel+"]") {
		t.Errorf("Final filter should produce the mapped video label %s, got %s", res.Trace.VideoLabel, fc)
	}

	// The silent source must be mapped at its real input index.
	mapped := false
	for i, a := range res.Args {
		if a == "-map" && i+1 < len(res.Args) && res.Args[i+1] == "1:a" {
			mapped = true
		}
	}
	if !mapped {
		t.Errorf("Expected silent audio mapped as 1:a, args: %v", res.Args)
	}
}

func TestCompileSkipsUnresolvedMedia(t *testing.T) {
	doc := models.ExportDocument{
		Project: testProject(),
		Tracks: []models.Track{{
			Type: models.TrackMedia,
			Elements: []models.Element{{
				ID:        "el-1",
				Type:      models.ElementMedia,
				MediaID:   "missing",
				StartTime: 0,
				Duration:  5,
			}},
		}},
		MediaItems: map[string]models.MediaAsset{},
	}
	res := Compile(doc, Options{})

	if len(res.Skipped) != 1 {
		t.Fatalf("Expected 1 skipped element, got %d", len(res.Skipped))
	}
	if res.Skipped[0].ElementID != "el-1" {
		t.Errorf("Expected skip for el-1, got %s", res.Skipped[0].ElementID)
	}
	if !strings.Contains(res.Skipped[0].Reason, "missing") {
		t.Errorf("Skip reason should name the media id, got %q", res.Skipped[0].Reason)
	}
	// No spurious input slot: base + silence only.
	if got := countInputs(res.Args); got != 2 {
		t.Errorf("Expected 2 inputs, got %d", got)
	}
}

func TestCompileDeduplicatesInputs(t *testing.T) {
	doc := models.ExportDocument{
		Project: testProject(),
		Tracks: []models.Track{{
			Type: models.TrackMedia,
			Elements: []models.Element{
				{ID: "a", Type: models.ElementMedia, MediaID: "clip", StartTime: 0, Duration: 2},
				{ID: "b", Type: models.ElementMedia, MediaID: "clip", StartTime: 3, Duration: 2},
			},
		}},
		MediaItems: map[string]models.MediaAsset{
			"clip": {Type: models.MediaVideo, URL: "/tmp/clip.mp4"},
		},
	}
	res := Compile(doc, Options{})

	// Base + one deduplicated media input; both clips contribute audio so no
	// silence is injected.
	if got := countInputs(res.Args); got != 2 {
		t.Errorf("Expected 2 inputs after dedup, got %d", got)
	}
	if res.Trace.AudioLabel == "" {
		t.Error("Expected an audio label from unmuted video clips")
	}
}

func TestCompileAudioPassthroughSingleSource(t *testing.T) {
	doc := models.ExportDocument{
		Project: testProject(),
		Tracks: []models.Track{{
			Type: models.TrackAudio,
			Elements: []models.Element{
				{ID: "a", Type: models.ElementMedia, MediaID: "song", StartTime: 1.5, Duration: 10},
			},
		}},
		MediaItems: map[string]models.MediaAsset{
			"song": {Type: models.MediaAudio, URL: "/tmp/song.mp3"},
		},
	}
	res := Compile(doc, Options{})

	fc := argValue(t, res.Args, "-filter_complex")
	if strings.Contains(fc, "amix") {
		t.Error("Single audio source must be passed through, not mixed")
	}
	if !strings.Contains(fc, "adelay=1500|1500") {
		t.Errorf("Expected adelay=1500|1500 in graph: %s", fc)
	}
	if res.Trace.AudioLabel == "" {
		t.Error("Expected audio label")
	}
}

func TestCompileAudioMixCountsSources(t *testing.T) {
	doc := models.ExportDocument{
		Project: testProject(),
		Tracks: []models.Track{
			{
				Type: models.TrackMedia,
				Elements: []models.Element{
					{ID: "v1", Type: models.ElementMedia, MediaID: "vid", StartTime: 0, Duration: 4},
				},
			},
			{
				Type: models.TrackAudio,
				Elements: []models.Element{
					{ID: "a1", Type: models.ElementMedia, MediaID: "song", StartTime: 0, Duration: 4},
					{ID: "a2", Type: models.ElementMedia, MediaID: "song2", StartTime: 2, Duration: 4},
				},
			},
		},
		MediaItems: map[string]models.MediaAsset{
			"vid":   {Type: models.MediaVideo, URL: "/tmp/v.mp4"},
			"song":  {Type: models.MediaAudio, URL: "/tmp/a.mp3"},
			"song2": {Type: models.MediaAudio, URL: "/tmp/b.mp3"},
		},
	}
	res := Compile(doc, Options{})

	fc := argValue(t, res.Args, "-filter_complex")
	if !strings.Contains(fc, "amix=inputs=3:normalize=1:dropout_transition=2") {
		t.Errorf("Expected amix with 3 inputs: %s", fc)
	}
}

func TestCompileMutedVideoContributesNoAudio(t *testing.T) {
	doc := models.ExportDocument{
		Project: testProject(),
		Tracks: []models.Track{{
			Type: models.TrackMedia,
			Elements: []models.Element{
				{ID: "v1", Type: models.ElementMedia, MediaID: "vid", StartTime: 0, Duration: 4, Muted: true},
			},
		}},
		MediaItems: map[string]models.MediaAsset{
			"vid": {Type: models.MediaVideo, URL: "/tmp/v.mp4"},
		},
	}
	res := Compile(doc, Options{})

	if res.Trace.AudioLabel != "" {
		t.Errorf("Muted video must not contribute audio, got label %s", res.Trace.AudioLabel)
	}
	// Silence injected at index 2 (base, video, anullsrc).
	found := false
	for i, a := range res.Args {
		if a == "-map" && i+1 < len(res.Args) && res.Args[i+1] == "2:a" {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected silent source mapped as 2:a, args: %v", res.Args)
	}
}

func TestFormatSeconds(t *testing.T) {
	cases := map[float64]string{
		1:      "1.000",
		2.5:    "2.500",
		0:      "0.000",
		29.999: "29.999",
		1.0005: "1.001",
	}
	for in, want := range cases {
		if got := formatSeconds(in); got != want {
			t.Errorf("formatSeconds(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestCompileEndToEndScenario(t *testing.T) {
	doc := models.ExportDocument{
		Project: testProject(),
		Tracks: []models.Track{
			{
				Type: models.TrackMedia,
				Elements: []models.Element{
					{ID: "v1", Type: models.ElementMedia, MediaID: "clip", StartTime: 0, Duration: 5, TrimStart: 0},
				},
			},
			{
				Type: models.TrackText,
				Elements: []models.Element{
					{ID: "t1", Type: models.ElementText, Content: "Hi", FontSize: 32, Color: "#ffffff",
						BackgroundColor: "transparent", StartTime: 1, Duration: 2},
				},
			},
		},
		MediaItems: map[string]models.MediaAsset{
			"clip": {Type: models.MediaVideo, URL: "/tmp/clip.mp4"},
		},
	}
	res := Compile(doc, Options{})

	// Base + 1 media input; no silence needed (unmuted video has audio).
	if got := countInputs(res.Args); got != 2 {
		t.Errorf("Expected 2 inputs, got %d", got)
	}

	fc := argValue(t, res.Args, "-filter_complex")
	if !strings.Contains(fc, "overlay=shortest=1:enable='between(t,0.000,5.000)'") {
		t.Errorf("Expected time-gated video overlay between(t,0.000,5.000): %s", fc)
	}
	if !strings.Contains(fc, "drawtext=text='Hi'") {
		t.Errorf("Expected drawtext for Hi: %s", fc)
	}
	if !strings.Contains(fc, "enable='between(t,1.000,3.000)'") {
		t.Errorf("Expected text gate between(t,1.000,3.000): %s", fc)
	}
	if !strings.Contains(fc, "box=0") {
		t.Errorf("Transparent background must disable the box: %s", fc)
	}
	if strings.Contains(fc, "boxcolor") {
		t.Errorf("Transparent background must not emit a boxcolor: %s", fc)
	}

	// Fixed encoding tail.
	if v := argValue(t, res.Args, "-c:v"); v != "libx264" {
		t.Errorf("Expected libx264, got %s", v)
	}
	if v := argValue(t, res.Args, "-movflags"); v != "+faststart" {
		t.Errorf("Expected +faststart, got %s", v)
	}
	if v := argValue(t, res.Args, "-r"); v != "30" {
		t.Errorf("Expected -r 30, got %s", v)
	}
}

func TestCompileTextEscapingAndOffsets(t *testing.T) {
	x, y := 10.0, -40.0
	doc := models.ExportDocument{
		Project: testProject(),
		Tracks: []models.Track{{
			Type: models.TrackText,
			Elements: []models.Element{
				{ID: "t1", Type: models.ElementText, Content: "time: 12:30", FontSize: 20,
					Color: "#ff0000", BackgroundColor: "#000000", StartTime: 0, Duration: 1,
					X: &x, Y: &y},
			},
		}},
	}
	res := Compile(doc, Options{})

	fc := argValue(t, res.Args, "-filter_complex")
	if !strings.Contains(fc, `text='time\: 12\:30'`) {
		t.Errorf("Colons must be escaped in drawtext: %s", fc)
	}
	if !strings.Contains(fc, "box=1:boxcolor=0x000000") {
		t.Errorf("Opaque background must enable the box: %s", fc)
	}
	// Explicit offsets are relative to canvas center: 1920/2+10, 1080/2-40.
	if !strings.Contains(fc, "x=970:y=500") {
		t.Errorf("Expected x=970:y=500 from center offsets: %s", fc)
	}
}

func TestCompileTextDefaultCentered(t *testing.T) {
	doc := models.ExportDocument{
		Project: testProject(),
		Tracks: []models.Track{{
			Type: models.TrackText,
			Elements: []models.Element{
				{ID: "t1", Type: models.ElementText, Content: "Hi", StartTime: 0, Duration: 1},
			},
		}},
	}
	res := Compile(doc, Options{TextPosition: "center"})

	fc := argValue(t, res.Args, "-filter_complex")
	if !strings.Contains(fc, "x=(W-tw)/2:y=(H-th)/2") {
		t.Errorf("Default text position should center on the canvas: %s", fc)
	}
}

func TestCompileImageOverlayPosition(t *testing.T) {
	doc := models.ExportDocument{
		Project: testProject(),
		Tracks: []models.Track{{
			Type: models.TrackMedia,
			Elements: []models.Element{
				{ID: "i1", Type: models.ElementMedia, MediaID: "logo", StartTime: 0, Duration: 3,
					Position: "bottom-right"},
			},
		}},
		MediaItems: map[string]models.MediaAsset{
			"logo": {Type: models.MediaImage, URL: "/tmp/logo.png", Width: 320, Height: 180},
		},
	}
	res := Compile(doc, Options{})

	fc := argValue(t, res.Args, "-filter_complex")
	if !strings.Contains(fc, "scale=320:180:force_original_aspect_ratio=decrease,format=rgba") {
		t.Errorf("Expected natural-size image scale: %s", fc)
	}
	if !strings.Contains(fc, "overlay=x='W-w-20':y='H-h-20'") {
		t.Errorf("Expected bottom-right preset with margin 20: %s", fc)
	}
}

func TestCompileVideoEffects(t *testing.T) {
	doc := models.ExportDocument{
		Project: testProject(),
		Tracks: []models.Track{{
			Type: models.TrackMedia,
			Elements: []models.Element{
				{ID: "v1", Type: models.ElementMedia, MediaID: "vid", StartTime: 0, Duration: 2,
					Effects: []models.Effect{{Type: "grayscale"}, {Type: "brightness", Value: 0.1}}},
			},
		}},
		MediaItems: map[string]models.MediaAsset{
			"vid": {Type: models.MediaVideo, URL: "/tmp/v.mp4"},
		},
	}
	res := Compile(doc, Options{})

	fc := argValue(t, res.Args, "-filter_complex")
	if !strings.Contains(fc, "hue=s=0,eq=brightness=0.1") {
		t.Errorf("Expected effect chain in clip filter: %s", fc)
	}
}

func TestCompileBlurBackground(t *testing.T) {
	project := testProject()
	project.BackgroundType = "blur"
	project.BlurIntensity = 8
	doc := models.ExportDocument{
		Project: project,
		Tracks: []models.Track{{
			Type: models.TrackMedia,
			Elements: []models.Element{
				{ID: "v1", Type: models.ElementMedia, MediaID: "vid", StartTime: 0, Duration: 2},
			},
		}},
		MediaItems: map[string]models.MediaAsset{
			"vid": {Type: models.MediaVideo, URL: "/tmp/v.mp4"},
		},
	}
	res := Compile(doc, Options{})

	fc := argValue(t, res.Args, "-filter_complex")
	if !strings.Contains(fc, "boxblur=8:8") {
		t.Errorf("Expected blurred backdrop with configured intensity: %s", fc)
	}
	if !strings.Contains(fc, "split=2") {
		t.Errorf("Blur background needs the clip split into backdrop and foreground: %s", fc)
	}
	if strings.Contains(fc, "pad=") {
		t.Errorf("Blur background must not pad with the background color: %s", fc)
	}
}

func TestCompileDeterministic(t *testing.T) {
	doc := models.ExportDocument{
		Project: testProject(),
		Tracks: []models.Track{{
			Type: models.TrackMedia,
			Elements: []models.Element{
				{ID: "a", Type: models.ElementMedia, MediaID: "m1", StartTime: 0, Duration: 1},
				{ID: "b", Type: models.ElementMedia, MediaID: "m2", StartTime: 1, Duration: 1},
			},
		}},
		MediaItems: map[string]models.MediaAsset{
			"m1": {Type: models.MediaVideo, URL: "/tmp/1.mp4"},
			"m2": {Type: models.MediaVideo, URL: "/tmp/2.mp4"},
		},
	}
	first := Compile(doc, Options{})
	for i := 0; i < 10; i++ {
		again := Compile(doc, Options{})
		if strings.Join(again.Args, "\x00") != strings.Join(first.Args, "\x00") {
			t.Fatalf("Compilation is not deterministic:\n%v\n%v", first.Args, again.Args)
		}
	}
}
