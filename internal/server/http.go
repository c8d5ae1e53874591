// SPDX-License-Identifier: EPL-2.0

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/semaphore"

	"github.com/ik5/audconv"
	"github.com/ik5/audconv/formats"
	"github.com/ik5/audconv/internal/config"
	"github.com/ik5/audconv/internal/metrics"
	"github.com/ik5/audconv/internal/scratch"
)

// multipartMemory is how much of an upload is kept in memory before
// mime/multipart spills it to disk.
const multipartMemory = 8 << 20

// Converter is the part of audconv.Converter the HTTP API needs.
type Converter interface {
	Convert(ctx context.Context, req audconv.Request) audconv.Result
	AudioInfo(ctx context.Context, path string) *formats.Info
}

// HTTPServer exposes conversion and probing over HTTP.
type HTTPServer struct {
	server    *http.Server
	logger    *slog.Logger
	conv      Converter
	metrics   *metrics.Metrics
	gatherer  prometheus.Gatherer
	ffmpegOK  func() bool
	slots     *semaphore.Weighted
	maxUpload int64
	timeout   time.Duration
	tempDir   string
	startTime time.Time
}

type Options struct {
	Config    *config.Config
	Converter Converter
	Metrics   *metrics.Metrics
	Gatherer  prometheus.Gatherer
	// FFmpegAvailable feeds the health report; nil reports unknown.
	FFmpegAvailable func() bool
	Logger          *slog.Logger
}

func NewHTTPServer(opts Options) *HTTPServer {
	cfg := opts.Config

	h := &HTTPServer{
		logger:    opts.Logger,
		conv:      opts.Converter,
		metrics:   opts.Metrics,
		gatherer:  opts.Gatherer,
		ffmpegOK:  opts.FFmpegAvailable,
		slots:     semaphore.NewWeighted(int64(cfg.HTTP.MaxConcurrent)),
		maxUpload: cfg.HTTP.MaxUploadBytes(),
		timeout:   cfg.HTTP.GetRequestTimeoutDuration(),
		tempDir:   cfg.Audio.TempDir,
		startTime: time.Now(),
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	if h.gatherer == nil {
		h.gatherer = prometheus.DefaultGatherer
	}

	mux := http.NewServeMux()
	h.setupRoutes(mux)

	h.server = &http.Server{
		Addr:              cfg.HTTP.Addr(),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      h.timeout + 30*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return h
}

// Handler returns the routed handler, mainly for tests.
func (h *HTTPServer) Handler() http.Handler {
	return h.server.Handler
}

func (h *HTTPServer) setupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/convert", h.withMetrics("/v1/convert", h.handleConvert))
	mux.HandleFunc("POST /v1/info", h.withMetrics("/v1/info", h.handleInfo))
	mux.HandleFunc("GET /health", h.withMetrics("/health", h.handleHealth))

	mux.Handle("GET /metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))
}

// withMetrics wraps an HTTP handler with metrics collection
func (h *HTTPServer) withMetrics(endpoint string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		startTime := time.Now()

		ww := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		handler(ww, r)

		if h.metrics == nil {
			return
		}

		duration := time.Since(startTime).Seconds()
		h.metrics.RecordHTTPRequest(r.Method, endpoint, strconv.Itoa(ww.statusCode), duration)

		if ww.statusCode >= 400 {
			errorType := "client_error"
			if ww.statusCode >= 500 {
				errorType = "server_error"
			}
			h.metrics.RecordHTTPError(r.Method, endpoint, errorType)
		}
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Start serves in the background. Listen errors other than a shutdown are
// sent on the returned channel.
func (h *HTTPServer) Start() <-chan error {
	h.logger.Info("starting HTTP API server", slog.String("address", h.server.Addr))

	errs := make(chan error, 1)
	go func() {
		defer close(errs)
		if err := h.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- fmt.Errorf("http server: %w", err)
		}
	}()

	return errs
}

// Stop gracefully stops the HTTP server
func (h *HTTPServer) Stop(ctx context.Context) error {
	h.logger.Info("stopping HTTP API server")

	return h.server.Shutdown(ctx)
}

type errorResponse struct {
	Error   string `json:"error"`
	Outcome string `json:"outcome,omitempty"`
}

func (h *HTTPServer) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Debug("writing response", "err", err)
	}
}

func (h *HTTPServer) writeError(w http.ResponseWriter, status int, outcome string, err error) {
	h.writeJSON(w, status, errorResponse{Error: err.Error(), Outcome: outcome})
}

// statusFor maps a conversion outcome to an HTTP status.
func statusFor(outcome string) int {
	switch outcome {
	case "ok":
		return http.StatusOK
	case "unsupported":
		return http.StatusUnsupportedMediaType
	case "decode_error":
		return http.StatusUnprocessableEntity
	case "invalid_request":
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// readUpload parses the multipart body and returns the "file" part.
func (h *HTTPServer) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(w, http.StatusRequestEntityTooLarge, "", fmt.Errorf("upload exceeds %d bytes", tooLarge.Limit))
			return nil, "", false
		}
		h.writeError(w, http.StatusBadRequest, "", fmt.Errorf("invalid multipart form: %w", err))
		return nil, "", false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "", fmt.Errorf("missing file field: %w", err))
		return nil, "", false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "", fmt.Errorf("reading upload: %w", err))
		return nil, "", false
	}
	if h.metrics != nil {
		h.metrics.RecordUpload(len(data))
	}

	return data, header.Filename, true
}

func formInt(r *http.Request, key string) (int, error) {
	v := strings.TrimSpace(r.FormValue(key))
	if v == "" {
		return 0, nil
	}

	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer, got %q", key, v)
	}

	return n, nil
}

// acquire waits for a conversion slot bounded by the request timeout.
func (h *HTTPServer) acquire(ctx context.Context, w http.ResponseWriter) bool {
	if err := h.slots.Acquire(ctx, 1); err != nil {
		h.writeError(w, http.StatusServiceUnavailable, "", fmt.Errorf("no conversion slot available: %w", err))
		return false
	}

	return true
}

// handleConvert implements POST /v1/convert. The body is multipart with a
// "file" part and optional target, format, sample_rate, channels and
// quality fields; the converted audio is returned as the response body.
func (h *HTTPServer) handleConvert(w http.ResponseWriter, r *http.Request) {
	data, filename, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	rate, err := formInt(r, "sample_rate")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "", err)
		return
	}
	channels, err := formInt(r, "channels")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "", err)
		return
	}

	target := r.FormValue("target")
	if target == "" {
		target = string(formats.TargetWAV)
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if !h.acquire(ctx, w) {
		return
	}
	defer h.slots.Release(1)

	if h.metrics != nil {
		defer h.metrics.ConversionStarted()()
	}

	res := h.conv.Convert(ctx, audconv.Request{
		Input:      audconv.FromBytes(data, filename),
		Format:     r.FormValue("format"),
		Target:     target,
		SampleRate: rate,
		Channels:   channels,
		Quality:    r.FormValue("quality"),
		InMemory:   true,
	})
	if !res.OK() {
		outcome := audconv.Outcome(res.Err)
		h.writeError(w, statusFor(outcome), outcome, res.Err)
		return
	}

	name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	if name == "" || name == "." {
		name = "audio"
	}
	ext := "." + strings.ToLower(strings.TrimSpace(target))
	if t, err := formats.ParseTarget(target); err == nil {
		ext = t.Extension()
	}

	w.Header().Set("Content-Type", res.MediaType)
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Data)))
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", name+ext))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(res.Data); err != nil {
		h.logger.Debug("writing converted audio", "err", err)
	}
}

// handleInfo implements POST /v1/info, describing the uploaded file.
func (h *HTTPServer) handleInfo(w http.ResponseWriter, r *http.Request) {
	data, filename, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	scope := scratch.New(h.tempDir, uuid.NewString())
	defer func() {
		if err := scope.Release(); err != nil {
			h.logger.Warn("removing spooled upload", "err", err)
		}
	}()

	path, err := spool(scope, data, filename)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	info := h.conv.AudioInfo(ctx, path)
	if info == nil {
		h.writeError(w, http.StatusUnprocessableEntity, "decode_error",
			fmt.Errorf("unable to read audio from %q", filename))
		return
	}

	h.writeJSON(w, http.StatusOK, info)
}

// spool writes data to a file of scope, keeping the upload's extension
// when it names a known format so ffprobe can use it as a hint.
func spool(scope *scratch.Scope, data []byte, filename string) (string, error) {
	var ext string
	if e := filepath.Ext(filename); e != "" {
		if _, ok := formats.Lookup(e); ok {
			ext = strings.ToLower(e)
		}
	}

	return scope.WriteFile("info-*"+ext, data)
}

func (h *HTTPServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	health := map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(h.startTime).Round(time.Second).String(),
	}
	if h.ffmpegOK != nil {
		health["ffmpeg"] = h.ffmpegOK()
	}

	h.writeJSON(w, http.StatusOK, health)
}
