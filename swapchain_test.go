package vrend

import (
	"errors"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

func TestChooseSurfaceFormat(t *testing.T) {
	unorm := vk.SurfaceFormat{Format: vk.FormatB8g8r8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear}
	rgba := vk.SurfaceFormat{Format: vk.FormatR8g8b8a8Srgb, ColorSpace: vk.ColorSpaceSrgbNonlinear}
	// Same format, other color space: not an exact match.
	wrongSpace := vk.SurfaceFormat{Format: vk.FormatB8g8r8a8Srgb, ColorSpace: vk.ColorSpace(1000104001)}

	got := ChooseSurfaceFormat([]vk.SurfaceFormat{unorm, rgba, PreferredSurfaceFormat}, PreferredSurfaceFormat)
	assert.Equal(t, PreferredSurfaceFormat.Format, got.Format)
	assert.Equal(t, PreferredSurfaceFormat.ColorSpace, got.ColorSpace)

	got = ChooseSurfaceFormat([]vk.SurfaceFormat{unorm, rgba}, PreferredSurfaceFormat)
	assert.Equal(t, unorm.Format, got.Format)

	got = ChooseSurfaceFormat([]vk.SurfaceFormat{wrongSpace, rgba}, PreferredSurfaceFormat)
	assert.Equal(t, wrongSpace.ColorSpace, got.ColorSpace, "falls back to the first entry")
}

func TestChoosePresentMode(t *testing.T) {
	tests := []struct {
		name      string
		modes     []vk.PresentMode
		preferred vk.PresentMode
		want      vk.PresentMode
	}{
		{"mailbox available", []vk.PresentMode{vk.PresentModeFifo, vk.PresentModeMailbox}, vk.PresentModeMailbox, vk.PresentModeMailbox},
		{"mailbox missing", []vk.PresentMode{vk.PresentModeImmediate, vk.PresentModeFifo}, vk.PresentModeMailbox, vk.PresentModeFifo},
		{"immediate preferred", []vk.PresentMode{vk.PresentModeImmediate, vk.PresentModeFifo}, vk.PresentModeImmediate, vk.PresentModeImmediate},
		{"fifo only", []vk.PresentMode{vk.PresentModeFifo}, vk.PresentModeMailbox, vk.PresentModeFifo},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ChoosePresentMode(tt.modes, tt.preferred))
		})
	}
}

func boundedCaps(minW, minH, maxW, maxH uint32) vk.SurfaceCapabilities {
	return vk.SurfaceCapabilities{
		CurrentExtent:  vk.Extent2D{Width: vk.MaxUint32, Height: vk.MaxUint32},
		MinImageExtent: vk.Extent2D{Width: minW, Height: minH},
		MaxImageExtent: vk.Extent2D{Width: maxW, Height: maxH},
		MinImageCount:  2,
	}
}

func TestChooseExtentUsesCurrentExtent(t *testing.T) {
	caps := boundedCaps(1, 1, 4096, 4096)
	caps.CurrentExtent = vk.Extent2D{Width: 800, Height: 600}

	got := ChooseExtent(caps, 1024, 768)
	assert.Equal(t, uint32(800), got.Width)
	assert.Equal(t, uint32(600), got.Height)
}

func TestChooseExtentClampsWindowSize(t *testing.T) {
	caps := boundedCaps(100, 100, 1920, 1080)

	tests := []struct {
		name          string
		width, height int
		wantW, wantH  uint32
	}{
		{"within bounds", 640, 480, 640, 480},
		{"too large", 4000, 3000, 1920, 1080},
		{"too small", 10, 20, 100, 100},
		{"mixed", 50, 5000, 100, 1080},
		{"negative", -1, -1, 100, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ChooseExtent(caps, tt.width, tt.height)
			assert.Equal(t, tt.wantW, got.Width)
			assert.Equal(t, tt.wantH, got.Height)
			assert.GreaterOrEqual(t, got.Width, caps.MinImageExtent.Width)
			assert.LessOrEqual(t, got.Height, caps.MaxImageExtent.Height)
		})
	}
}

func TestChooseImageCount(t *testing.T) {
	tests := []struct {
		name     string
		min, max uint32
		want     uint32
	}{
		{"unbounded", 2, 0, 3},
		{"below max", 2, 8, 3},
		{"capped", 3, 3, 3},
		{"single", 1, 0, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			caps := vk.SurfaceCapabilities{MinImageCount: tt.min, MaxImageCount: tt.max}
			got := ChooseImageCount(caps)
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got, tt.min)
		})
	}
}

func TestChooseCompositeAlpha(t *testing.T) {
	caps := vk.SurfaceCapabilities{
		SupportedCompositeAlpha: vk.CompositeAlphaFlags(vk.CompositeAlphaInheritBit | vk.CompositeAlphaPreMultipliedBit),
	}
	assert.Equal(t, vk.CompositeAlphaPreMultipliedBit, chooseCompositeAlpha(caps))

	caps.SupportedCompositeAlpha = vk.CompositeAlphaFlags(vk.CompositeAlphaOpaqueBit)
	assert.Equal(t, vk.CompositeAlphaOpaqueBit, chooseCompositeAlpha(caps))
}

func TestChooseTransform(t *testing.T) {
	caps := vk.SurfaceCapabilities{
		SupportedTransforms: vk.SurfaceTransformFlags(vk.SurfaceTransformIdentityBit | vk.SurfaceTransformRotate90Bit),
		CurrentTransform:    vk.SurfaceTransformRotate90Bit,
	}
	assert.Equal(t, vk.SurfaceTransformIdentityBit, chooseTransform(caps))

	caps.SupportedTransforms = vk.SurfaceTransformFlags(vk.SurfaceTransformRotate90Bit)
	assert.Equal(t, vk.SurfaceTransformRotate90Bit, chooseTransform(caps))
}

// fakeWindow is a Window whose drawable size is scripted.
type fakeWindow struct {
	width, height int
	closed        bool
	waits         int
	destroyed     int
	// onWait runs on every WaitEvents call.
	onWait func(w *fakeWindow)
}

func (w *fakeWindow) ProcAddr() unsafe.Pointer             { return nil }
func (w *fakeWindow) RequiredInstanceExtensions() []string { return []string{"VK_KHR_surface"} }
func (w *fakeWindow) CreateSurface(vk.Instance) (vk.Surface, error) {
	return vk.NullSurface, errors.New("fake window has no surface")
}
func (w *fakeWindow) FramebufferSize() (int, int) { return w.width, w.height }
func (w *fakeWindow) ShouldClose() bool           { return w.closed }
func (w *fakeWindow) Destroy()                    { w.destroyed++ }
func (w *fakeWindow) WaitEvents() {
	w.waits++
	if w.onWait != nil {
		w.onWait(w)
	}
}

func TestWaitForExtentBlocksWhileMinimized(t *testing.T) {
	extents := []vk.Extent2D{{Width: 0, Height: 0}, {Width: 800, Height: 0}, {Width: 800, Height: 600}}
	queries := 0
	query := func() (vk.SurfaceCapabilities, error) {
		caps := vk.SurfaceCapabilities{CurrentExtent: extents[queries]}
		queries++
		return caps, nil
	}
	win := &fakeWindow{}

	caps, err := waitForExtent(query, win)
	require.NoError(t, err)
	assert.Equal(t, uint32(800), caps.CurrentExtent.Width)
	assert.Equal(t, uint32(600), caps.CurrentExtent.Height)
	assert.Equal(t, 3, queries)
	assert.Equal(t, 2, win.waits)
}

func TestWaitForExtentUndefinedUsesWindowSize(t *testing.T) {
	query := func() (vk.SurfaceCapabilities, error) {
		return boundedCaps(1, 1, 4096, 4096), nil
	}
	win := &fakeWindow{onWait: func(w *fakeWindow) {
		w.width, w.height = 800, 600
	}}

	_, err := waitForExtent(query, win)
	require.NoError(t, err)
	assert.Equal(t, 1, win.waits)
}

func TestWaitForExtentWindowClosed(t *testing.T) {
	query := func() (vk.SurfaceCapabilities, error) {
		return vk.SurfaceCapabilities{}, nil
	}
	win := &fakeWindow{onWait: func(w *fakeWindow) {
		w.closed = true
	}}

	_, err := waitForExtent(query, win)
	assert.ErrorIs(t, err, ErrWindowClosed)
	assert.Equal(t, 1, win.waits)
}

func TestWaitForExtentQueryError(t *testing.T) {
	boom := errors.New("surface lost")
	_, err := waitForExtent(func() (vk.SurfaceCapabilities, error) {
		return vk.SurfaceCapabilities{}, boom
	}, &fakeWindow{})
	assert.ErrorIs(t, err, boom)
}

func TestSwapchainAligned(t *testing.T) {
	s := &Swapchain{
		reported:     3,
		images:       make([]vk.Image, 3),
		views:        make([]vk.ImageView, 3),
		framebuffers: make([]vk.Framebuffer, 3),
	}
	assert.True(t, s.aligned())
	assert.NoError(t, s.checkAligned())
	assert.Equal(t, 3, s.Len())

	s.framebuffers = s.framebuffers[:2]
	assert.False(t, s.aligned())
	assert.EqualError(t, s.checkAligned(), "swapchain: reported 3 images, have 3 images, 3 views, 2 framebuffers")
}

func TestSwapchainCheckAlignedAgainstReportedCount(t *testing.T) {
	s := &Swapchain{
		reported:     4,
		images:       make([]vk.Image, 3),
		views:        make([]vk.ImageView, 3),
		framebuffers: make([]vk.Framebuffer, 3),
	}
	assert.True(t, s.aligned())
	assert.Error(t, s.checkAligned())
}

func TestSwapchainStateString(t *testing.T) {
	assert.Equal(t, "uninitialized", SwapchainUninitialized.String())
	assert.Equal(t, "ready", SwapchainReady.String())
	assert.Equal(t, "stale", SwapchainStale.String())
	assert.Equal(t, "rebuilding", SwapchainRebuilding.String())
	assert.Equal(t, "unknown", SwapchainState(42).String())
}
