package metrics

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Handler returns an http.Handler serving /metrics in Prometheus text
// exposition format and /healthz.
func (m *Metrics) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", m.handleMetrics)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	return mux
}

// StartHTTP serves Handler on addr in the background until ctx is cancelled.
// An empty addr disables the endpoint.
func (m *Metrics) StartHTTP(ctx context.Context, addr string) {
	if addr == "" {
		return // metrics endpoint disabled
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           m.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("metrics HTTP listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("metrics HTTP error", "err", err)
		}
	}()

	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()
}

// handleMetrics writes all metrics in Prometheus text exposition format.
func (m *Metrics) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	uptime := time.Since(m.startTime).Seconds()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	// Write errors to http.ResponseWriter are non-actionable; suppress errcheck.
	write := func(name, help, mtype string, value int64) {
		_, _ = fmt.Fprintf(w, "# HELP %s %s\n", name, help)
		_, _ = fmt.Fprintf(w, "# TYPE %s %s\n", name, mtype)
		_, _ = fmt.Fprintf(w, "%s %d\n", name, value)
	}
	writeFloat := func(name, help, mtype string, value float64) {
		_, _ = fmt.Fprintf(w, "# HELP %s %s\n", name, help)
		_, _ = fmt.Fprintf(w, "# TYPE %s %s\n", name, mtype)
		_, _ = fmt.Fprintf(w, "%s %f\n", name, value)
	}

	writeFloat("pngtuber_uptime_seconds", "Process uptime in seconds.", "gauge", uptime)

	write("pngtuber_audio_blocks_total", "Sample blocks classified.", "counter",
		m.BlocksProcessed.Load())
	write("pngtuber_audio_speaking_blocks_total", "Sample blocks classified as speaking.", "counter",
		m.SpeakingBlocks.Load())
	write("pngtuber_audio_samples_total", "Samples received from the input device.", "counter",
		m.SamplesIn.Load())
	write("pngtuber_audio_input_overflows_total", "Blocks flagged with input overflow.", "counter",
		m.InputOverflows.Load())
	write("pngtuber_audio_input_underflows_total", "Blocks flagged with input underflow.", "counter",
		m.InputUnderflows.Load())

	write("pngtuber_ticks_total", "Tick calls.", "counter",
		m.Ticks.Load())
	write("pngtuber_texture_uploads_total", "Texture uploads.", "counter",
		m.Uploads.Load())
	write("pngtuber_renders_total", "Draw calls.", "counter",
		m.Renders.Load())
	write("pngtuber_transitions_total", "Idle/speaking buffer switches.", "counter",
		m.Transitions.Load())

	write("pngtuber_sources_active", "Live avatar sources.", "gauge",
		m.SourcesCreated.Load()-m.SourcesDestroyed.Load())
}
