package vrend

import (
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

// Window is the windowing collaborator the renderer presents through.
type Window interface {
	// ProcAddr returns the loader's vkGetInstanceProcAddr.
	ProcAddr() unsafe.Pointer
	// RequiredInstanceExtensions lists the extensions needed to present to this window.
	RequiredInstanceExtensions() []string
	// CreateSurface binds a presentation surface to the instance.
	CreateSurface(instance vk.Instance) (vk.Surface, error)
	// FramebufferSize is the current drawable size in pixels.
	FramebufferSize() (width, height int)
	// WaitEvents blocks until at least one window-system event was processed.
	WaitEvents()
	// ShouldClose reports whether the user asked to close the window.
	ShouldClose() bool
	// Destroy releases the window.
	Destroy()
}

// ResizeNotifier is implemented by windows that report size changes.
type ResizeNotifier interface {
	OnResize(fn func(width, height int))
}
