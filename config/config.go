package config

import (
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"clipforge/utils"
)

// All configuration comes from CLIPFORGE_* environment variables with
// sensible defaults, read at call time so tests can override them.

// GetDataDir returns the directory holding the job and document databases.
// Priority: CLIPFORGE_DATA_DIR environment variable > "./data" default.
func GetDataDir() string {
	if dir := os.Getenv("CLIPFORGE_DATA_DIR"); dir != "" {
		return dir
	}
	return "./data"
}

// GetJobsDBPath returns the full path to the export jobs database.
// Path: {DATA_DIR}/jobs.db
func GetJobsDBPath() string {
	return filepath.Join(GetDataDir(), "jobs.db")
}

// GetDocumentsDBPath returns the full path to the timeline document store.
// Path: {DATA_DIR}/documents.db
func GetDocumentsDBPath() string {
	return filepath.Join(GetDataDir(), "documents.db")
}

// GetTempDir returns the scratch area root. Each job gets an isolated
// subdirectory keyed by job id, deleted when the job finishes.
func GetTempDir() string {
	if dir := os.Getenv("CLIPFORGE_TEMP_DIR"); dir != "" {
		return dir
	}
	return filepath.Join(os.TempDir(), "clipforge-exports")
}

// GetListenAddr returns the HTTP listen address for the API endpoints.
func GetListenAddr() string {
	if addr := os.Getenv("CLIPFORGE_LISTEN_ADDR"); addr != "" {
		return addr
	}
	return ":8080"
}

// GetPollInterval returns how often the worker polls for queued jobs.
func GetPollInterval() time.Duration {
	return durationEnv("CLIPFORGE_POLL_INTERVAL", 10*time.Second)
}

// GetMaxConcurrentJobs returns the concurrency ceiling for in-flight renders.
func GetMaxConcurrentJobs() int {
	return intEnv("CLIPFORGE_MAX_CONCURRENT_JOBS", 2)
}

// GetRenderTimeout returns the per-job subprocess deadline. Zero disables
// the deadline entirely.
func GetRenderTimeout() time.Duration {
	return durationEnv("CLIPFORGE_RENDER_TIMEOUT", 30*time.Minute)
}

// GetFFmpegPath returns the compositing engine binary to invoke.
func GetFFmpegPath() string {
	if p := os.Getenv("CLIPFORGE_FFMPEG_PATH"); p != "" {
		return p
	}
	return "ffmpeg"
}

// GetFontFile returns the font used by drawtext overlays.
func GetFontFile() string {
	if p := os.Getenv("CLIPFORGE_FONT_FILE"); p != "" {
		return p
	}
	return "/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf"
}

// GetTextPosition returns the default placement for text elements that carry
// no explicit x/y offset: "center" centers on the canvas. Kept explicit here
// rather than as an implicit fallback inside the compiler.
func GetTextPosition() string {
	if p := os.Getenv("CLIPFORGE_TEXT_POSITION"); p != "" {
		return p
	}
	return "center"
}

// GetStorageBackend selects where finished renders are published:
// "local", "s3" or "gcs".
func GetStorageBackend() string {
	if b := os.Getenv("CLIPFORGE_STORAGE_BACKEND"); b != "" {
		return b
	}
	return "local"
}

// GetServeDir returns the base directory for the local storage backend.
// Files under it are served by the HTTP server via signed download links.
// Defaults to "./serve".
func GetServeDir() string {
	if dir := os.Getenv("CLIPFORGE_SERVE_DIR"); dir != "" {
		return dir
	}
	return "./serve"
}

// GetPublicBaseURL returns the externally reachable base URL used when
// building signed download links for the local backend.
func GetPublicBaseURL() string {
	if u := os.Getenv("CLIPFORGE_PUBLIC_BASE_URL"); u != "" {
		return u
	}
	return "http://localhost:8080"
}

var (
	signingSecretOnce sync.Once
	signingSecret     []byte
)

// GetSigningSecret returns the HMAC key used for signed download tokens.
// When CLIPFORGE_SIGNING_SECRET is unset a random secret is generated once
// per process, which invalidates outstanding local links on restart.
func GetSigningSecret() []byte {
	signingSecretOnce.Do(func() {
		if s := os.Getenv("CLIPFORGE_SIGNING_SECRET"); s != "" {
			signingSecret = []byte(s)
			return
		}
		generated, err := utils.GenerateRandomHex(32)
		if err != nil {
			// crypto/rand failure leaves nothing sane to fall back on
			panic("config: cannot generate signing secret: " + err.Error())
		}
		signingSecret = []byte(generated)
	})
	return signingSecret
}

// S3 backend settings.
func GetS3Bucket() string    { return os.Getenv("CLIPFORGE_S3_BUCKET") }
func GetS3Region() string    { return os.Getenv("CLIPFORGE_S3_REGION") }
func GetS3AccessKey() string { return os.Getenv("CLIPFORGE_S3_ACCESS_KEY") }
func GetS3SecretKey() string { return os.Getenv("CLIPFORGE_S3_SECRET_KEY") }

// GCS backend settings. Credentials are the base64-encoded service account
// JSON key.
func GetGCSBucket() string      { return os.Getenv("CLIPFORGE_GCS_BUCKET") }
func GetGCSCredentials() string { return os.Getenv("CLIPFORGE_GCS_CREDENTIALS") }

func intEnv(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func durationEnv(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			return d
		}
	}
	return def
}
