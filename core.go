package vrend

import (
	vk "github.com/vulkan-go/vulkan"
)

// Renderer owns every Vulkan object needed to draw the triangle into one
// window. All methods must be called from the thread that created the window.
type Renderer struct {
	win     Window
	cfg     Config
	shaders ShaderSource

	ctx        *RenderingContext
	surface    vk.Surface
	gpu        PhysicalDeviceInfo
	device     *LogicalDevice
	swapchain  *Swapchain
	renderPass *RenderPass
	pipeline   *Pipeline
	commands   *CommandPool
	sync       *FrameSync

	state       SwapchainState
	frames      uint64
	recreations int
	destroyed   bool
}

// Initialize opens a GLFW window and bootstraps a renderer presenting to it.
// title, width and height override the matching Config fields.
func Initialize(title string, width, height int, cfg Config) (*Renderer, error) {
	cfg.Title = title
	cfg.Width = width
	cfg.Height = height
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	win, err := NewGLFWWindow(title, width, height)
	if err != nil {
		return nil, err
	}
	return NewRenderer(win, cfg)
}

// NewRenderer runs the whole bootstrap against win, up to and including the
// first swapchain, pipeline and frame sync set. The renderer takes ownership
// of win; on failure everything created so far, win included, is released.
func NewRenderer(win Window, cfg Config) (*Renderer, error) {
	r := &Renderer{
		win:     win,
		cfg:     cfg,
		shaders: FileShaderSource{},
		surface: vk.NullSurface,
	}
	if err := r.init(); err != nil {
		r.Teardown()
		return nil, err
	}
	if n, ok := win.(ResizeNotifier); ok {
		n.OnResize(func(width, height int) {
			Logger().Debug("vulkan: window resized", "width", width, "height", height)
			r.NotifyResized()
		})
	}
	return r, nil
}

func (r *Renderer) init() error {
	if err := InitLoader(r.win); err != nil {
		return err
	}
	ctx, err := NewRenderingContext(r.cfg.Title, r.win, r.cfg.Diagnostics)
	if err != nil {
		return err
	}
	r.ctx = ctx

	if r.surface, err = r.win.CreateSurface(ctx.Instance()); err != nil {
		return err
	}
	if r.gpu, err = PickPhysicalDevice(ctx.Instance(), r.surface); err != nil {
		return err
	}
	if r.device, err = NewLogicalDevice(r.gpu, ctx.Layers()); err != nil {
		return err
	}
	if err := r.recreateSwapchain(); err != nil {
		return err
	}
	if r.commands, err = NewCommandPool(r.device.Handle(), uint32(r.gpu.Families.Graphics)); err != nil {
		return err
	}
	if r.sync, err = NewFrameSync(r.device.Handle()); err != nil {
		return err
	}
	return nil
}

func sameExtent(a, b vk.Extent2D) bool {
	return a.Width == b.Width && a.Height == b.Height
}

// rebuildPlan decides which swapchain dependents a fresh chain invalidates.
// The render pass depends on the image format only; the pipeline bakes in
// both the render pass and the viewport extent.
func rebuildPlan(pass *RenderPass, pipeline *Pipeline, format vk.Format, extent vk.Extent2D) (rebuildPass, rebuildPipeline bool) {
	rebuildPass = pass == nil || pass.Format() != format
	rebuildPipeline = rebuildPass || pipeline == nil || !sameExtent(pipeline.Extent(), extent)
	return rebuildPass, rebuildPipeline
}

// recreateSwapchain builds the swapchain for the first time or rebuilds it
// after it went stale. The render pass is rebuilt only when the image format
// changed and the pipeline only when the render pass or the extent changed.
func (r *Renderer) recreateSwapchain() error {
	initial := r.state == SwapchainUninitialized
	r.state = SwapchainRebuilding
	dev := r.device.Handle()

	if err := r.device.WaitIdle(); err != nil {
		return err
	}
	caps, err := waitForExtent(func() (vk.SurfaceCapabilities, error) {
		return SurfaceCapabilities(r.gpu.Handle, r.surface)
	}, r.win)
	if err != nil {
		return err
	}
	if r.swapchain != nil {
		r.swapchain.Destroy(dev)
		r.swapchain = nil
	}

	width, height := r.win.FramebufferSize()
	sc := &Swapchain{}
	err = sc.create(r.device, SwapchainOptions{
		GPU:         r.gpu,
		Surface:     r.surface,
		Caps:        caps,
		Width:       width,
		Height:      height,
		PresentMode: r.cfg.PresentMode.Mode(),
	})
	if err != nil {
		sc.Destroy(dev)
		return err
	}
	r.swapchain = sc

	rebuildPass, rebuildPipeline := rebuildPlan(r.renderPass, r.pipeline, sc.Format(), sc.Extent())
	if rebuildPipeline && r.pipeline != nil {
		r.pipeline.Destroy(dev)
		r.pipeline = nil
	}
	if rebuildPass {
		if r.renderPass != nil {
			r.renderPass.Destroy(dev)
		}
		if r.renderPass, err = NewRenderPass(dev, sc.Format()); err != nil {
			return err
		}
	}
	if rebuildPipeline {
		if r.pipeline, err = BuildPipeline(dev, r.renderPass.Handle(), sc.Extent(), r.shaders, r.cfg); err != nil {
			return err
		}
	}
	if err := sc.createFramebuffers(dev, r.renderPass.Handle()); err != nil {
		return err
	}
	if err := sc.checkAligned(); err != nil {
		return err
	}

	r.state = SwapchainReady
	if !initial {
		r.recreations++
	}
	Logger().Info("vulkan: swapchain ready",
		"width", sc.Extent().Width, "height", sc.Extent().Height,
		"format", sc.Format(), "present_mode", sc.PresentMode(),
		"images", sc.Len(), "recreations", r.recreations)
	return nil
}

// markStale flags the swapchain for recreation before the next frame records.
func (r *Renderer) markStale(reason string) {
	if r.state == SwapchainReady {
		Logger().Info("vulkan: swapchain stale", "reason", reason)
		r.state = SwapchainStale
	}
}

// NotifyResized marks the swapchain stale after the window changed size.
func (r *Renderer) NotifyResized() {
	r.markStale("window resized")
}

// FrameCount is the number of frames presented so far.
func (r *Renderer) FrameCount() uint64 {
	return r.frames
}

// Recreations counts swapchain rebuilds after the initial creation.
func (r *Renderer) Recreations() int {
	return r.recreations
}

// Extent is the current swapchain extent, zero before the first creation.
func (r *Renderer) Extent() vk.Extent2D {
	if r.swapchain == nil {
		return vk.Extent2D{}
	}
	return r.swapchain.Extent()
}

// Window is the window the renderer presents to, nil after Teardown.
func (r *Renderer) Window() Window {
	return r.win
}

func (r *Renderer) SwapchainState() SwapchainState {
	return r.state
}

func (r *Renderer) SelectedDevice() PhysicalDeviceInfo {
	return r.gpu
}

type teardownStep struct {
	name string
	run  func()
}

func (r *Renderer) deviceHandle() vk.Device {
	if r.device == nil {
		return nil
	}
	return r.device.Handle()
}

// teardownSteps lists destruction in the reverse of creation order. Every
// step tolerates objects that were never created.
func (r *Renderer) teardownSteps() []teardownStep {
	return []teardownStep{
		{"frame sync", func() {
			if r.sync != nil {
				r.sync.Destroy(r.deviceHandle())
				r.sync = nil
			}
		}},
		{"command pool", func() {
			if r.commands != nil {
				r.commands.Destroy(r.deviceHandle())
				r.commands = nil
			}
		}},
		{"pipeline", func() {
			if r.pipeline != nil {
				r.pipeline.DestroyPipeline(r.deviceHandle())
			}
		}},
		{"pipeline layout", func() {
			if r.pipeline != nil {
				r.pipeline.DestroyLayout(r.deviceHandle())
				r.pipeline = nil
			}
		}},
		{"render pass", func() {
			if r.renderPass != nil {
				r.renderPass.Destroy(r.deviceHandle())
				r.renderPass = nil
			}
		}},
		{"framebuffers", func() {
			if r.swapchain != nil {
				r.swapchain.DestroyFramebuffers(r.deviceHandle())
			}
		}},
		{"image views", func() {
			if r.swapchain != nil {
				r.swapchain.DestroyViews(r.deviceHandle())
			}
		}},
		{"swapchain", func() {
			if r.swapchain != nil {
				r.swapchain.Destroy(r.deviceHandle())
				r.swapchain = nil
			}
		}},
		{"device", func() {
			if r.device != nil {
				r.device.Destroy()
				r.device = nil
			}
		}},
		{"surface", func() {
			if r.ctx != nil && r.surface != vk.NullSurface {
				vk.DestroySurface(r.ctx.Instance(), r.surface, nil)
			}
			r.surface = vk.NullSurface
		}},
		{"diagnostics hook", func() {
			if r.ctx != nil {
				r.ctx.DestroyDiagnostics()
			}
		}},
		{"instance", func() {
			if r.ctx != nil {
				r.ctx.Destroy()
				r.ctx = nil
			}
		}},
		{"window", func() {
			if r.win != nil {
				r.win.Destroy()
				r.win = nil
			}
		}},
	}
}

// Teardown waits for the device to go idle and releases everything the
// renderer owns, window included. Calling it again does nothing.
func (r *Renderer) Teardown() {
	if r.destroyed {
		return
	}
	r.destroyed = true
	if r.device != nil {
		if err := r.device.WaitIdle(); err != nil {
			Logger().Warn("vulkan: wait idle before teardown", "err", err)
		}
	}
	for _, step := range r.teardownSteps() {
		Logger().Debug("vulkan: destroy", "object", step.name)
		step.run()
	}
	r.state = SwapchainUninitialized
}
