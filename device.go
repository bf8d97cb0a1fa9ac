package vrend

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// RequiredDeviceExtensions must be supported by every candidate.
var RequiredDeviceExtensions = []string{swapchainExtension}

// PhysicalDeviceInfo is an immutable snapshot of one candidate processor,
// captured once during selection.
type PhysicalDeviceInfo struct {
	Handle           vk.PhysicalDevice
	Name             string
	Type             vk.PhysicalDeviceType
	Properties       vk.PhysicalDeviceProperties
	MemoryProperties vk.PhysicalDeviceMemoryProperties
	Features         vk.PhysicalDeviceFeatures
	Extensions       []string
	Formats          []vk.SurfaceFormat
	PresentModes     []vk.PresentMode
	Families         QueueFamilies
}

// Unsuitable returns why the candidate cannot drive the surface, or "" when it can.
func (d *PhysicalDeviceInfo) Unsuitable() string {
	switch {
	case len(missingNames(d.Extensions, RequiredDeviceExtensions)) > 0:
		return "missing required device extensions"
	case !d.Families.Complete():
		return "missing graphics or present queue family"
	case len(d.Formats) == 0:
		return "no surface formats"
	case len(d.PresentModes) == 0:
		return "no present modes"
	}
	return ""
}

// Discrete reports whether the candidate is a discrete GPU.
func (d *PhysicalDeviceInfo) Discrete() bool {
	return d.Type == vk.PhysicalDeviceTypeDiscreteGpu
}

func deviceTypeName(t vk.PhysicalDeviceType) string {
	switch t {
	case vk.PhysicalDeviceTypeDiscreteGpu:
		return "discrete"
	case vk.PhysicalDeviceTypeIntegratedGpu:
		return "integrated"
	case vk.PhysicalDeviceTypeVirtualGpu:
		return "virtual"
	case vk.PhysicalDeviceTypeCpu:
		return "cpu"
	}
	return "other"
}

// SelectDevice filters the candidates and prefers the first discrete one. When no
// discrete candidate passes, the first passing candidate of any type is used.
func SelectDevice(candidates []PhysicalDeviceInfo) (PhysicalDeviceInfo, error) {
	if len(candidates) == 0 {
		return PhysicalDeviceInfo{}, errors.Wrap(ErrNoDevice, "no processors visible")
	}
	var passing []int
	for i := range candidates {
		reason := candidates[i].Unsuitable()
		Logger().Info("vulkan: candidate device",
			"name", candidates[i].Name, "type", deviceTypeName(candidates[i].Type), "rejected", reason)
		if reason == "" {
			passing = append(passing, i)
		}
	}
	if len(passing) == 0 {
		return PhysicalDeviceInfo{}, errors.Wrapf(ErrNoDevice, "none of %d candidates passed filtering", len(candidates))
	}
	for _, i := range passing {
		if candidates[i].Discrete() {
			return candidates[i], nil
		}
	}
	Logger().Warn("vulkan: no discrete GPU passed filtering, falling back", "name", candidates[passing[0]].Name)
	return candidates[passing[0]], nil
}

// PhysicalDevices enumerates every processor visible to the instance.
func PhysicalDevices(instance vk.Instance) ([]vk.PhysicalDevice, error) {
	var count uint32
	ret := vk.EnumeratePhysicalDevices(instance, &count, nil)
	if isError(ret) {
		return nil, newError(ret, "enumerate physical devices")
	}
	if count == 0 {
		return nil, nil
	}
	gpus := make([]vk.PhysicalDevice, count)
	ret = vk.EnumeratePhysicalDevices(instance, &count, gpus)
	if isError(ret) {
		return nil, newError(ret, "enumerate physical devices")
	}
	return gpus[:count], nil
}

// QueryDevice captures a PhysicalDeviceInfo for gpu against surface.
func QueryDevice(gpu vk.PhysicalDevice, surface vk.Surface) (PhysicalDeviceInfo, error) {
	info := PhysicalDeviceInfo{Handle: gpu}

	vk.GetPhysicalDeviceProperties(gpu, &info.Properties)
	info.Properties.Deref()
	info.Name = vk.ToString(info.Properties.DeviceName[:])
	info.Type = info.Properties.DeviceType
	vk.GetPhysicalDeviceMemoryProperties(gpu, &info.MemoryProperties)
	info.MemoryProperties.Deref()
	vk.GetPhysicalDeviceFeatures(gpu, &info.Features)
	info.Features.Deref()

	var err error
	if info.Extensions, err = DeviceExtensions(gpu); err != nil {
		return info, err
	}
	if info.Families, err = FindQueueFamilies(gpu, surface); err != nil {
		return info, err
	}
	if info.Formats, err = SurfaceFormats(gpu, surface); err != nil {
		return info, err
	}
	if info.PresentModes, err = SurfacePresentModes(gpu, surface); err != nil {
		return info, err
	}
	return info, nil
}

// queryCandidates snapshots every gpu. A gpu whose snapshot fails is logged
// and left out, the same as a candidate that fails filtering.
func queryCandidates(gpus []vk.PhysicalDevice, query func(vk.PhysicalDevice) (PhysicalDeviceInfo, error)) []PhysicalDeviceInfo {
	candidates := make([]PhysicalDeviceInfo, 0, len(gpus))
	for i, gpu := range gpus {
		info, err := query(gpu)
		if err != nil {
			Logger().Warn("vulkan: skipping device", "index", i, "name", info.Name, "err", err)
			continue
		}
		candidates = append(candidates, info)
	}
	return candidates
}

// PickPhysicalDevice enumerates, snapshots and selects a processor for surface.
func PickPhysicalDevice(instance vk.Instance, surface vk.Surface) (PhysicalDeviceInfo, error) {
	gpus, err := PhysicalDevices(instance)
	if err != nil {
		return PhysicalDeviceInfo{}, err
	}
	candidates := queryCandidates(gpus, func(gpu vk.PhysicalDevice) (PhysicalDeviceInfo, error) {
		return QueryDevice(gpu, surface)
	})
	if len(candidates) == 0 && len(gpus) > 0 {
		return PhysicalDeviceInfo{}, errors.Wrapf(ErrNoDevice, "none of %d devices could be queried", len(gpus))
	}
	selected, err := SelectDevice(candidates)
	if err != nil {
		return selected, err
	}
	Logger().Info("vulkan: selected device",
		"name", selected.Name, "type", deviceTypeName(selected.Type),
		"graphics_family", selected.Families.Graphics, "present_family", selected.Families.Present)
	return selected, nil
}

// SurfaceFormats lists the formats gpu supports for surface.
func SurfaceFormats(gpu vk.PhysicalDevice, surface vk.Surface) ([]vk.SurfaceFormat, error) {
	var count uint32
	ret := vk.GetPhysicalDeviceSurfaceFormats(gpu, surface, &count, nil)
	if isError(ret) {
		return nil, newError(ret, "get surface formats")
	}
	formats := make([]vk.SurfaceFormat, count)
	ret = vk.GetPhysicalDeviceSurfaceFormats(gpu, surface, &count, formats)
	if isError(ret) {
		return nil, newError(ret, "get surface formats")
	}
	formats = formats[:count]
	for i := range formats {
		formats[i].Deref()
	}
	return formats, nil
}

// SurfacePresentModes lists the present modes gpu supports for surface.
func SurfacePresentModes(gpu vk.PhysicalDevice, surface vk.Surface) ([]vk.PresentMode, error) {
	var count uint32
	ret := vk.GetPhysicalDeviceSurfacePresentModes(gpu, surface, &count, nil)
	if isError(ret) {
		return nil, newError(ret, "get surface present modes")
	}
	modes := make([]vk.PresentMode, count)
	ret = vk.GetPhysicalDeviceSurfacePresentModes(gpu, surface, &count, modes)
	if isError(ret) {
		return nil, newError(ret, "get surface present modes")
	}
	return modes[:count], nil
}

// SurfaceCapabilities queries the current capabilities of surface.
func SurfaceCapabilities(gpu vk.PhysicalDevice, surface vk.Surface) (vk.SurfaceCapabilities, error) {
	var caps vk.SurfaceCapabilities
	ret := vk.GetPhysicalDeviceSurfaceCapabilities(gpu, surface, &caps)
	if isError(ret) {
		return caps, newError(ret, "get surface capabilities")
	}
	caps.Deref()
	caps.CurrentExtent.Deref()
	caps.MinImageExtent.Deref()
	caps.MaxImageExtent.Deref()
	return caps, nil
}
