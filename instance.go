package vrend

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// RenderingContext is the top-level connection to Vulkan. It is created first
// and destroyed last.
type RenderingContext struct {
	instance   vk.Instance
	extensions []string
	layers     []string
	diag       *DebugHook
}

// InitLoader points vulkan-go at the window system's loader.
func InitLoader(win Window) error {
	vk.SetGetInstanceProcAddr(win.ProcAddr())
	return errors.Wrap(vk.Init(), "vulkan init")
}

// NewRenderingContext probes the required capabilities, creates the instance
// and, with diagnostics enabled, registers the debug report hook.
func NewRenderingContext(appName string, win Window, diag Diagnostics) (*RenderingContext, error) {
	req := NewInstanceRequirements(win.RequiredInstanceExtensions(), diag)
	if err := ProbeInstance(req); err != nil {
		return nil, err
	}

	extensions := safeStrings(req.Extensions)
	layers := safeStrings(req.Layers)

	var instance vk.Instance
	ret := vk.CreateInstance(&vk.InstanceCreateInfo{
		SType: vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: &vk.ApplicationInfo{
			SType:              vk.StructureTypeApplicationInfo,
			ApiVersion:         uint32(vk.MakeVersion(1, 0, 0)),
			ApplicationVersion: uint32(vk.MakeVersion(1, 0, 0)),
			EngineVersion:      uint32(vk.MakeVersion(1, 0, 0)),
			PApplicationName:   safeString(appName),
			PEngineName:        safeString("vrend"),
		},
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: extensions,
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     layers,
	}, nil, &instance)
	if err := newError(ret, "create instance"); err != nil {
		return nil, err
	}
	if err := vk.InitInstance(instance); err != nil {
		vk.DestroyInstance(instance, nil)
		return nil, errors.Wrap(err, "init instance")
	}

	ctx := &RenderingContext{
		instance:   instance,
		extensions: req.Extensions,
		layers:     req.Layers,
	}
	Logger().Info("vulkan: instance created",
		"extensions", len(extensions), "layers", len(layers), "diagnostics", diag.String())

	if diag == DiagnosticsEnabled {
		hook, err := NewDebugHook(instance, NewDiagnosticsPrinter(nil))
		if err != nil {
			ctx.Destroy()
			return nil, err
		}
		ctx.diag = hook
	}
	return ctx, nil
}

func (c *RenderingContext) Instance() vk.Instance {
	return c.instance
}

// Extensions returns the enabled instance extensions.
func (c *RenderingContext) Extensions() []string {
	return c.extensions
}

// Layers returns the enabled instance layers. Device creation reuses them.
func (c *RenderingContext) Layers() []string {
	return c.layers
}

// DestroyDiagnostics removes the debug hook, if any.
func (c *RenderingContext) DestroyDiagnostics() {
	if c.diag != nil {
		c.diag.Destroy(c.instance)
		c.diag = nil
	}
}

// Destroy removes the debug hook and the instance.
func (c *RenderingContext) Destroy() {
	c.DestroyDiagnostics()
	if c.instance != nil {
		vk.DestroyInstance(c.instance, nil)
		c.instance = nil
	}
}
