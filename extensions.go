package vrend

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

const (
	swapchainExtension   = "VK_KHR_swapchain"
	debugReportExtension = "VK_EXT_debug_report"
	validationLayer      = "VK_LAYER_KHRONOS_validation"
)

// InstanceExtensions gets a list of instance extensions available on the platform.
func InstanceExtensions() ([]string, error) {
	var count uint32
	ret := vk.EnumerateInstanceExtensionProperties("", &count, nil)
	if isError(ret) {
		return nil, newError(ret, "enumerate instance extensions")
	}
	list := make([]vk.ExtensionProperties, count)
	ret = vk.EnumerateInstanceExtensionProperties("", &count, list)
	if isError(ret) {
		return nil, newError(ret, "enumerate instance extensions")
	}
	names := make([]string, 0, count)
	for _, ext := range list[:count] {
		ext.Deref()
		names = append(names, vk.ToString(ext.ExtensionName[:]))
	}
	return names, nil
}

// DeviceExtensions gets a list of extensions available on the provided physical device.
func DeviceExtensions(gpu vk.PhysicalDevice) ([]string, error) {
	var count uint32
	ret := vk.EnumerateDeviceExtensionProperties(gpu, "", &count, nil)
	if isError(ret) {
		return nil, newError(ret, "enumerate device extensions")
	}
	list := make([]vk.ExtensionProperties, count)
	ret = vk.EnumerateDeviceExtensionProperties(gpu, "", &count, list)
	if isError(ret) {
		return nil, newError(ret, "enumerate device extensions")
	}
	names := make([]string, 0, count)
	for _, ext := range list[:count] {
		ext.Deref()
		names = append(names, vk.ToString(ext.ExtensionName[:]))
	}
	return names, nil
}

// ValidationLayers gets a list of validation layers available on the platform.
func ValidationLayers() ([]string, error) {
	var count uint32
	ret := vk.EnumerateInstanceLayerProperties(&count, nil)
	if isError(ret) {
		return nil, newError(ret, "enumerate instance layers")
	}
	list := make([]vk.LayerProperties, count)
	ret = vk.EnumerateInstanceLayerProperties(&count, list)
	if isError(ret) {
		return nil, newError(ret, "enumerate instance layers")
	}
	names := make([]string, 0, count)
	for _, layer := range list[:count] {
		layer.Deref()
		names = append(names, vk.ToString(layer.LayerName[:]))
	}
	return names, nil
}

// InstanceRequirements is what the instance must support before it is created.
type InstanceRequirements struct {
	Extensions []string
	Layers     []string
}

// NewInstanceRequirements combines the window system's presentation extensions
// with the diagnostics extension and layer when diagnostics are enabled.
func NewInstanceRequirements(windowExtensions []string, diag Diagnostics) InstanceRequirements {
	req := InstanceRequirements{
		Extensions: append([]string(nil), windowExtensions...),
	}
	if diag == DiagnosticsEnabled {
		req.Extensions = append(req.Extensions, debugReportExtension)
		req.Layers = []string{validationLayer}
	}
	return req
}

// Check verifies the requirements against the available names. There is no
// degraded mode: anything missing is an error.
func (r InstanceRequirements) Check(extensions, layers []string) error {
	if missing := missingNames(extensions, r.Extensions); len(missing) > 0 {
		return &MissingExtensionsError{Kind: "instance extensions", Missing: missing}
	}
	if missing := missingNames(layers, r.Layers); len(missing) > 0 {
		return &MissingExtensionsError{Kind: "validation layers", Missing: missing}
	}
	return nil
}

// ProbeInstance queries the platform and checks the requirements.
func ProbeInstance(r InstanceRequirements) error {
	extensions, err := InstanceExtensions()
	if err != nil {
		return err
	}
	var layers []string
	if len(r.Layers) > 0 {
		if layers, err = ValidationLayers(); err != nil {
			return err
		}
	}
	return errors.WithStack(r.Check(extensions, layers))
}
