package vrend

import (
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// GLFWWindow is a resizable GLFW window without a client API, suitable for Vulkan.
type GLFWWindow struct {
	window   *glfw.Window
	onResize func(width, height int)
}

// NewGLFWWindow initializes GLFW and opens a window. Must be called from the main thread.
func NewGLFWWindow(title string, width, height int) (*GLFWWindow, error) {
	if err := glfw.Init(); err != nil {
		return nil, errors.Wrap(err, "glfw init")
	}
	if !glfw.VulkanSupported() {
		glfw.Terminate()
		return nil, errors.New("glfw: vulkan loader not found")
	}
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.Visible, glfw.True)

	window, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, errors.Wrap(err, "create window")
	}
	w := &GLFWWindow{window: window}
	window.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		if w.onResize != nil {
			w.onResize(width, height)
		}
	})
	window.SetKeyCallback(func(win *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			win.SetShouldClose(true)
		}
	})
	return w, nil
}

func (w *GLFWWindow) ProcAddr() unsafe.Pointer {
	return glfw.GetVulkanGetInstanceProcAddress()
}

func (w *GLFWWindow) RequiredInstanceExtensions() []string {
	return w.window.GetRequiredInstanceExtensions()
}

func (w *GLFWWindow) CreateSurface(instance vk.Instance) (vk.Surface, error) {
	ptr, err := w.window.CreateWindowSurface(instance, nil)
	if err != nil {
		return vk.NullSurface, errors.Wrap(err, "create window surface")
	}
	return vk.SurfaceFromPointer(ptr), nil
}

func (w *GLFWWindow) FramebufferSize() (int, int) {
	return w.window.GetFramebufferSize()
}

func (w *GLFWWindow) WaitEvents() {
	glfw.WaitEvents()
}

// PollEvents processes pending events without blocking.
func (w *GLFWWindow) PollEvents() {
	glfw.PollEvents()
}

func (w *GLFWWindow) ShouldClose() bool {
	return w.window.ShouldClose()
}

func (w *GLFWWindow) OnResize(fn func(width, height int)) {
	w.onResize = fn
}

// Destroy closes the window and terminates GLFW.
func (w *GLFWWindow) Destroy() {
	if w.window == nil {
		return
	}
	w.window.Destroy()
	w.window = nil
	glfw.Terminate()
}
