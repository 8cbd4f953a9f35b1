// Package ui provides a Fyne preview host for the avatar source. It plays
// the part a streaming application would: it owns the window, allocates the
// texture and drives tick and render at frame cadence.
package ui

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/NicolasHaas/pngtuber/pkg/audio"
	"github.com/NicolasHaas/pngtuber/pkg/avatar"
	"github.com/NicolasHaas/pngtuber/pkg/config"
	"github.com/NicolasHaas/pngtuber/pkg/host"
	"github.com/NicolasHaas/pngtuber/pkg/metrics"
	"github.com/NicolasHaas/pngtuber/pkg/version"
)

const (
	frameInterval   = time.Second / 60
	metricsInterval = time.Minute
)

// App is the preview window.
type App struct {
	fyneApp fyne.App
	window  fyne.Window

	cfg     *config.File
	cfgPath string
	metrics *metrics.Metrics

	module *host.Module
	handle *host.Handle

	// UI components
	view        *canvas.Image
	statusLabel *widget.Label
}

// NewApp creates the preview application.
func NewApp(cfg *config.File, cfgPath string, m *metrics.Metrics) *App {
	// Start PortAudio init in background so device enumeration overlaps window setup
	audio.PreInitAudio()

	a := &App{
		fyneApp: app.NewWithID("io.pngtuber.preview"),
		cfg:     cfg,
		cfgPath: cfgPath,
		metrics: m,
	}
	a.window = a.fyneApp.NewWindow("Ping-Tuber " + version.String())
	a.window.SetMaster()
	return a
}

// Run creates the avatar source and shows the window (blocks). A source
// that fails to create is returned as an error and no window is shown.
func (a *App) Run() error {
	mod, err := avatar.NewModule(avatar.Options{Metrics: a.metrics})
	if err != nil {
		return fmt.Errorf("register module: %w", err)
	}
	a.module = mod
	slog.Info("module loaded", "name", mod.Name, "description", mod.Description, "author", mod.Author)

	a.view = &canvas.Image{ScaleMode: canvas.ImageScalePixels}
	handle, err := mod.Create(avatar.SourceID, a.cfg.Source, &graphics{target: a.view})
	if err != nil {
		return err
	}
	a.handle = handle

	a.buildUI()

	ctx, cancel := context.WithCancel(context.Background())
	a.metrics.StartHTTP(ctx, a.cfg.MetricsAddr)
	a.metrics.StartPeriodicLog(metricsInterval, ctx.Done())
	go a.frameLoop(ctx)
	go a.watchConfig(ctx)

	a.window.SetCloseIntercept(func() {
		cancel()
		if err := a.handle.Destroy(); err != nil {
			slog.Error("destroy source", "err", err)
		}
		a.metrics.LogSummary()
		a.fyneApp.Quit()
	})
	a.window.ShowAndRun()
	return nil
}

func (a *App) buildUI() {
	w, h := float32(a.handle.Width()), float32(a.handle.Height())

	stage := container.NewWithoutLayout(a.view)
	a.statusLabel = widget.NewLabel(a.handle.Info().Name())

	a.window.SetContent(container.NewBorder(nil, a.statusLabel, nil, nil, stage))
	a.window.Resize(fyne.NewSize(w, h+a.statusLabel.MinSize().Height))
	a.window.SetFixedSize(true)
}

// frameLoop drives tick and render on the Fyne main goroutine.
func (a *App) frameLoop(ctx context.Context) {
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	last := time.Now()
	var lastState avatar.BufferState
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			elapsed := float32(now.Sub(last).Seconds())
			last = now
			fyne.Do(func() {
				if ctx.Err() != nil {
					return
				}
				a.handle.Tick(elapsed)
				a.handle.Render()

				src, ok := a.handle.Instance().(*avatar.Source)
				if !ok {
					return
				}
				if state := src.Current(); state != lastState {
					lastState = state
					a.statusLabel.SetText(fmt.Sprintf("%s: %s", a.handle.Info().Name(), state))
				}
			})
		}
	}
}

// watchConfig forwards config file edits to the source's update callback.
func (a *App) watchConfig(ctx context.Context) {
	if a.cfgPath == "" {
		return
	}
	err := config.Watch(ctx, a.cfgPath, func(f *config.File) {
		fyne.Do(func() {
			if ctx.Err() != nil {
				return
			}
			a.handle.Update(f.Source)
		})
	})
	if err != nil {
		slog.Warn("config watch stopped", "err", err)
	}
}
