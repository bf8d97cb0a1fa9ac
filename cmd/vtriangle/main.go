// Command vtriangle opens a window and draws one triangle per frame until the
// window is closed or Escape is pressed.
package main

import (
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/andewx/vrend"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
)

func init() {
	// GLFW and the frame loop must stay on the main thread.
	runtime.LockOSThread()
}

func main() {
	var (
		configPath  = pflag.StringP("config", "c", "", "TOML config file")
		title       = pflag.String("title", "", "window title")
		width       = pflag.Int("width", 0, "window width in pixels")
		height      = pflag.Int("height", 0, "window height in pixels")
		diagnostics = pflag.String("diagnostics", "", "validation layer and debug report: enabled|disabled")
		verbose     = pflag.BoolP("verbose", "v", false, "log per-frame detail")
	)
	pflag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	vrend.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg := vrend.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = vrend.LoadConfig(*configPath); err != nil {
			vrend.Fatal(err)
		}
	}
	if *title != "" {
		cfg.Title = *title
	}
	if *width > 0 {
		cfg.Width = *width
	}
	if *height > 0 {
		cfg.Height = *height
	}
	if *diagnostics != "" {
		if err := cfg.Diagnostics.UnmarshalText([]byte(*diagnostics)); err != nil {
			vrend.Fatal(err)
		}
	}

	r, err := vrend.Initialize(cfg.Title, cfg.Width, cfg.Height, cfg)
	if err != nil {
		vrend.Fatal(err)
	}
	if err := run(r, cfg.FrameRate); err != nil {
		vrend.Fatal(err, r.Teardown)
	}
	vrend.Logger().Info("vtriangle: done", "frames", r.FrameCount(), "recreations", r.Recreations())
	r.Teardown()
}

// run draws frames until the window asks to close. A zero frameRate draws as
// fast as presentation allows.
func run(r *vrend.Renderer, frameRate int) error {
	win, ok := r.Window().(*vrend.GLFWWindow)
	if !ok {
		return errors.New("vtriangle: renderer is not bound to a GLFW window")
	}
	var tick <-chan time.Time
	if frameRate > 0 {
		ticker := time.NewTicker(time.Second / time.Duration(frameRate))
		defer ticker.Stop()
		tick = ticker.C
	}
	for !win.ShouldClose() {
		win.PollEvents()
		err := r.DrawFrame()
		if errors.Is(err, vrend.ErrWindowClosed) {
			return nil
		}
		if err != nil {
			return err
		}
		if tick != nil {
			<-tick
		}
	}
	return nil
}
