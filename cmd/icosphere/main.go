// Command icosphere renders a noise-deformed icosphere over an animated background and
// exposes its controls on the keyboard, a stdin console and a websocket panel.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Carmen-Shannon/oxy-icosphere/config"
	"github.com/Carmen-Shannon/oxy-icosphere/engine"
	"github.com/Carmen-Shannon/oxy-icosphere/engine/camera"
	"github.com/Carmen-Shannon/oxy-icosphere/engine/controls"
	"github.com/Carmen-Shannon/oxy-icosphere/engine/controls/console"
	"github.com/Carmen-Shannon/oxy-icosphere/engine/controls/remote"
	"github.com/Carmen-Shannon/oxy-icosphere/engine/presets"
	"github.com/Carmen-Shannon/oxy-icosphere/engine/renderer"
	"github.com/Carmen-Shannon/oxy-icosphere/engine/scene"
	"github.com/Carmen-Shannon/oxy-icosphere/engine/window"
	"github.com/go-gl/mathgl/mgl32"
)

func main() {
	configPath := flag.String("config", "", "path to the JSON config file (default: next to the executable)")
	writeConfig := flag.Bool("write-config", false, "write the effective config to the config path and exit")
	remoteAddr := flag.String("remote", "", "listen address of the websocket control panel, overrides the config")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("[Main] %v", err)
	}
	if *remoteAddr != "" {
		cfg.RemoteAddr = *remoteAddr
	}
	if *writeConfig {
		if err := cfg.Save(*configPath); err != nil {
			log.Fatalf("[Main] %v", err)
		}
		return
	}

	// ── Engine + Window ─────────────────────────────────────────────────
	eng := engine.NewEngine(
		engine.WithProfiling(cfg.Profiling),
		engine.WithTickRate(cfg.TickRate),
		engine.WithTitle(cfg.Window.Title),
		engine.WithWindow(window.NewWindow(
			window.WithTitle(cfg.Window.Title),
			window.WithSize(cfg.Window.Width, cfg.Window.Height),
			window.WithMinSize(cfg.Window.MinWidth, cfg.Window.MinHeight),
			window.WithMaxSize(cfg.Window.MaxWidth, cfg.Window.MaxHeight),
		)),
	)

	// ── Renderer ────────────────────────────────────────────────────────
	presentMode := renderer.PresentModeVSync
	if !cfg.Renderer.VSync {
		presentMode = renderer.PresentModeUncapped
	}
	msaa := renderer.MSAA4x
	if cfg.Renderer.MSAA == 1 {
		msaa = renderer.MSAAOff
	}
	r := renderer.NewRenderer(
		renderer.BackendTypeWGPU,
		eng.Window(),
		renderer.WithPresentMode(presentMode),
		renderer.WithMSAA(msaa),
		renderer.WithClearColor(renderer.DefaultClearColor),
		renderer.WithForceSoftwareRenderer(cfg.Renderer.Software),
	)

	// ── Camera ──────────────────────────────────────────────────────────
	cam := camera.NewCamera(
		camera.WithFov(mgl32.DegToRad(cfg.Camera.Fov)),
		camera.WithClipPlanes(cfg.Camera.Near, cfg.Camera.Far),
		camera.WithController(camera.NewControllerFromEye(
			mgl32.Vec3(cfg.Camera.Eye),
			mgl32.Vec3(cfg.Camera.Target),
		)),
	)

	// ── Controls + Scene ────────────────────────────────────────────────
	ctrl := controls.NewControls(
		controls.WithSnapshot(cfg.Controls),
		controls.WithNoise(cfg.Noise),
	)
	sc := scene.NewScene("icosphere", cam, r, ctrl,
		eng.Window().Width(), eng.Window().Height(),
		scene.WithActive(true),
	)
	defer sc.Release()
	eng.AddScene(0, sc)

	// ── Control surfaces ────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		select {
		case <-ctx.Done():
			eng.Quit()
		case <-eng.Done():
		}
	}()

	var store presets.Store
	if cfg.PresetsPath != "" {
		store, err = presets.NewStore(cfg.PresetsPath)
		if err != nil {
			log.Printf("[Main] presets disabled: %v", err)
		} else {
			defer store.Close()
		}
	}

	if cfg.Console {
		options := []console.ConsoleOption{console.WithQuit(eng.Quit)}
		if store != nil {
			options = append(options, console.WithPresets(store))
		}
		c := console.NewConsole(ctrl, os.Stdin, os.Stdout, options...)
		go func() {
			if err := c.Run(ctx); err != nil {
				log.Printf("[Console] %v", err)
			}
		}()
	}

	if cfg.RemoteAddr != "" {
		hub := remote.NewRemote(ctrl)
		go func() {
			if err := hub.ListenAndServe(ctx, cfg.RemoteAddr); err != nil {
				log.Printf("[Remote] %v", err)
			}
		}()
	}

	eng.Run()
	stop()
}
