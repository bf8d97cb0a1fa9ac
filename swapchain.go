package vrend

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// SwapchainState tracks the swapchain through creation, invalidation and rebuild.
type SwapchainState int

const (
	SwapchainUninitialized SwapchainState = iota
	SwapchainReady
	SwapchainStale
	SwapchainRebuilding
)

func (s SwapchainState) String() string {
	switch s {
	case SwapchainUninitialized:
		return "uninitialized"
	case SwapchainReady:
		return "ready"
	case SwapchainStale:
		return "stale"
	case SwapchainRebuilding:
		return "rebuilding"
	}
	return "unknown"
}

// PreferredSurfaceFormat is chosen whenever the surface supports it.
var PreferredSurfaceFormat = vk.SurfaceFormat{
	Format:     vk.FormatB8g8r8a8Srgb,
	ColorSpace: vk.ColorSpaceSrgbNonlinear,
}

// ChooseSurfaceFormat returns preferred when formats contains the exact
// format and color space pair, else the first supported format.
func ChooseSurfaceFormat(formats []vk.SurfaceFormat, preferred vk.SurfaceFormat) vk.SurfaceFormat {
	for _, f := range formats {
		if f.Format == preferred.Format && f.ColorSpace == preferred.ColorSpace {
			return f
		}
	}
	return formats[0]
}

// ChoosePresentMode returns preferred when supported, else FIFO which every
// implementation must support.
func ChoosePresentMode(modes []vk.PresentMode, preferred vk.PresentMode) vk.PresentMode {
	for _, m := range modes {
		if m == preferred {
			return m
		}
	}
	return vk.PresentModeFifo
}

func clampUint32(v, lo, hi uint32) uint32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ChooseExtent uses the surface's current extent unless it is the undefined
// sentinel, in which case the drawable size is clamped into the surface bounds.
func ChooseExtent(caps vk.SurfaceCapabilities, width, height int) vk.Extent2D {
	if caps.CurrentExtent.Width != vk.MaxUint32 {
		return caps.CurrentExtent
	}
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return vk.Extent2D{
		Width:  clampUint32(uint32(width), caps.MinImageExtent.Width, caps.MaxImageExtent.Width),
		Height: clampUint32(uint32(height), caps.MinImageExtent.Height, caps.MaxImageExtent.Height),
	}
}

// ChooseImageCount asks for one image more than the minimum, capped at the
// maximum when the surface reports one (zero means unbounded).
func ChooseImageCount(caps vk.SurfaceCapabilities) uint32 {
	count := caps.MinImageCount + 1
	if caps.MaxImageCount > 0 && count > caps.MaxImageCount {
		count = caps.MaxImageCount
	}
	return count
}

func chooseTransform(caps vk.SurfaceCapabilities) vk.SurfaceTransformFlagBits {
	if vk.SurfaceTransformFlagBits(caps.SupportedTransforms)&vk.SurfaceTransformIdentityBit != 0 {
		return vk.SurfaceTransformIdentityBit
	}
	return caps.CurrentTransform
}

// chooseCompositeAlpha returns the first supported mode; one is always set.
func chooseCompositeAlpha(caps vk.SurfaceCapabilities) vk.CompositeAlphaFlagBits {
	for _, flag := range []vk.CompositeAlphaFlagBits{
		vk.CompositeAlphaOpaqueBit,
		vk.CompositeAlphaPreMultipliedBit,
		vk.CompositeAlphaPostMultipliedBit,
		vk.CompositeAlphaInheritBit,
	} {
		if caps.SupportedCompositeAlpha&vk.CompositeAlphaFlags(flag) != 0 {
			return flag
		}
	}
	return vk.CompositeAlphaOpaqueBit
}

// waitForExtent re-queries the capabilities until the surface reports a
// non-degenerate extent, blocking on window events in between. A minimized
// window reports zero width or height.
func waitForExtent(query func() (vk.SurfaceCapabilities, error), win Window) (vk.SurfaceCapabilities, error) {
	for {
		caps, err := query()
		if err != nil {
			return caps, err
		}
		if caps.CurrentExtent.Width == vk.MaxUint32 {
			if w, h := win.FramebufferSize(); w > 0 && h > 0 {
				return caps, nil
			}
		} else if !extentIsZero(caps.CurrentExtent) {
			return caps, nil
		}
		if win.ShouldClose() {
			return caps, ErrWindowClosed
		}
		win.WaitEvents()
	}
}

// Swapchain is the current chain of presentable images with their views and
// framebuffers. The three slices are always the same length and index-aligned.
type Swapchain struct {
	handle       vk.Swapchain
	format       vk.SurfaceFormat
	presentMode  vk.PresentMode
	extent       vk.Extent2D
	reported     uint32
	images       []vk.Image
	views        []vk.ImageView
	framebuffers []vk.Framebuffer
}

// SwapchainOptions carries everything a (re)build needs besides the device.
type SwapchainOptions struct {
	GPU         PhysicalDeviceInfo
	Surface     vk.Surface
	Caps        vk.SurfaceCapabilities
	Width       int
	Height      int
	PresentMode vk.PresentMode
}

func (s *Swapchain) Handle() vk.Swapchain {
	return s.handle
}

func (s *Swapchain) Format() vk.Format {
	return s.format.Format
}

func (s *Swapchain) Extent() vk.Extent2D {
	return s.extent
}

func (s *Swapchain) PresentMode() vk.PresentMode {
	return s.presentMode
}

// Len is the number of images in the chain.
func (s *Swapchain) Len() int {
	return len(s.images)
}

func (s *Swapchain) Framebuffer(index uint32) vk.Framebuffer {
	return s.framebuffers[index]
}

func (s *Swapchain) Rect() vk.Rect2D {
	return vk.Rect2D{Offset: vk.Offset2D{}, Extent: s.extent}
}

// create builds the chain and one view per image. Any previous chain must
// already have been destroyed.
func (s *Swapchain) create(device *LogicalDevice, opts SwapchainOptions) error {
	s.format = ChooseSurfaceFormat(opts.GPU.Formats, PreferredSurfaceFormat)
	s.presentMode = ChoosePresentMode(opts.GPU.PresentModes, opts.PresentMode)
	s.extent = ChooseExtent(opts.Caps, opts.Width, opts.Height)
	sharing, indices := device.Families().SharingMode()

	var swapchain vk.Swapchain
	ret := vk.CreateSwapchain(device.Handle(), &vk.SwapchainCreateInfo{
		SType:                 vk.StructureTypeSwapchainCreateInfo,
		Surface:               opts.Surface,
		MinImageCount:         ChooseImageCount(opts.Caps),
		ImageFormat:           s.format.Format,
		ImageColorSpace:       s.format.ColorSpace,
		ImageExtent:           s.extent,
		ImageArrayLayers:      1,
		ImageUsage:            vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		ImageSharingMode:      sharing,
		QueueFamilyIndexCount: uint32(len(indices)),
		PQueueFamilyIndices:   indices,
		PreTransform:          chooseTransform(opts.Caps),
		CompositeAlpha:        chooseCompositeAlpha(opts.Caps),
		PresentMode:           s.presentMode,
		Clipped:               vk.True,
		OldSwapchain:          vk.NullSwapchain,
	}, nil, &swapchain)
	if err := newError(ret, "create swapchain"); err != nil {
		return err
	}
	s.handle = swapchain

	var count uint32
	ret = vk.GetSwapchainImages(device.Handle(), s.handle, &count, nil)
	if err := newError(ret, "get swapchain images"); err != nil {
		return err
	}
	images := make([]vk.Image, count)
	ret = vk.GetSwapchainImages(device.Handle(), s.handle, &count, images)
	if err := newError(ret, "get swapchain images"); err != nil {
		return err
	}
	s.reported = count
	s.images = images[:count]

	s.views = make([]vk.ImageView, 0, len(s.images))
	for _, image := range s.images {
		view, err := createImageView(device.Handle(), image, s.format.Format)
		if err != nil {
			return err
		}
		s.views = append(s.views, view)
	}
	return nil
}

func createImageView(device vk.Device, image vk.Image, format vk.Format) (vk.ImageView, error) {
	var view vk.ImageView
	ret := vk.CreateImageView(device, &vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    image,
		ViewType: vk.ImageViewType2d,
		Format:   format,
		Components: vk.ComponentMapping{
			R: vk.ComponentSwizzleIdentity,
			G: vk.ComponentSwizzleIdentity,
			B: vk.ComponentSwizzleIdentity,
			A: vk.ComponentSwizzleIdentity,
		},
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
			LevelCount: 1,
			LayerCount: 1,
		},
	}, nil, &view)
	return view, newError(ret, "create image view")
}

// createFramebuffers binds each image view to the render pass, one per image.
func (s *Swapchain) createFramebuffers(device vk.Device, renderPass vk.RenderPass) error {
	s.framebuffers = make([]vk.Framebuffer, 0, len(s.views))
	for _, view := range s.views {
		var framebuffer vk.Framebuffer
		ret := vk.CreateFramebuffer(device, &vk.FramebufferCreateInfo{
			SType:           vk.StructureTypeFramebufferCreateInfo,
			RenderPass:      renderPass,
			AttachmentCount: 1,
			PAttachments:    []vk.ImageView{view},
			Width:           s.extent.Width,
			Height:          s.extent.Height,
			Layers:          1,
		}, nil, &framebuffer)
		if err := newError(ret, "create framebuffer"); err != nil {
			return err
		}
		s.framebuffers = append(s.framebuffers, framebuffer)
	}
	return nil
}

// DestroyFramebuffers releases the per-image framebuffers.
func (s *Swapchain) DestroyFramebuffers(device vk.Device) {
	for _, fb := range s.framebuffers {
		vk.DestroyFramebuffer(device, fb, nil)
	}
	s.framebuffers = nil
}

// DestroyViews releases the per-image views.
func (s *Swapchain) DestroyViews(device vk.Device) {
	for _, view := range s.views {
		vk.DestroyImageView(device, view, nil)
	}
	s.views = nil
}

// Destroy releases framebuffers, then views, then the chain. The images are
// owned by the chain.
func (s *Swapchain) Destroy(device vk.Device) {
	s.DestroyFramebuffers(device)
	s.DestroyViews(device)
	if s.handle != vk.NullSwapchain {
		vk.DestroySwapchain(device, s.handle, nil)
		s.handle = vk.NullSwapchain
	}
	s.images = nil
}

// aligned reports whether images, views and framebuffers match one-to-one.
func (s *Swapchain) aligned() bool {
	return len(s.images) == len(s.views) && len(s.views) == len(s.framebuffers)
}

// checkAligned also requires the slices to cover every image the chain reported.
func (s *Swapchain) checkAligned() error {
	if !s.aligned() || uint32(len(s.images)) != s.reported {
		return errors.Errorf("swapchain: reported %d images, have %d images, %d views, %d framebuffers",
			s.reported, len(s.images), len(s.views), len(s.framebuffers))
	}
	return nil
}
