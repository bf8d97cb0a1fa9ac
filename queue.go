package vrend

import (
	vk "github.com/vulkan-go/vulkan"
)

// QueueFamilies records the queue family serving each role, -1 when none does.
type QueueFamilies struct {
	Graphics int
	Present  int
}

// Complete reports whether both roles are filled.
func (q QueueFamilies) Complete() bool {
	return q.Graphics >= 0 && q.Present >= 0
}

// Separate reports whether graphics and present use different families.
func (q QueueFamilies) Separate() bool {
	return q.Graphics != q.Present
}

// Unique returns the distinct family indices, graphics first.
func (q QueueFamilies) Unique() []uint32 {
	if !q.Separate() {
		return []uint32{uint32(q.Graphics)}
	}
	return []uint32{uint32(q.Graphics), uint32(q.Present)}
}

// SharingMode returns how swapchain images are shared between the two families:
// concurrent across both when they differ, exclusive otherwise.
func (q QueueFamilies) SharingMode() (vk.SharingMode, []uint32) {
	if q.Separate() {
		return vk.SharingModeConcurrent, q.Unique()
	}
	return vk.SharingModeExclusive, nil
}

// pickQueueFamilies records the first family with graphics capability and the
// first with presentation support. They may coincide.
func pickQueueFamilies(props []vk.QueueFamilyProperties, supportsPresent func(index uint32) bool) QueueFamilies {
	families := QueueFamilies{Graphics: -1, Present: -1}
	for i := range props {
		if families.Graphics < 0 && props[i].QueueFlags&vk.QueueFlags(vk.QueueGraphicsBit) != 0 {
			families.Graphics = i
		}
		if families.Present < 0 && supportsPresent(uint32(i)) {
			families.Present = i
		}
		if families.Complete() {
			break
		}
	}
	return families
}

// FindQueueFamilies scans the queue families of gpu against surface.
func FindQueueFamilies(gpu vk.PhysicalDevice, surface vk.Surface) (QueueFamilies, error) {
	var count uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(gpu, &count, nil)
	props := make([]vk.QueueFamilyProperties, count)
	vk.GetPhysicalDeviceQueueFamilyProperties(gpu, &count, props)
	props = props[:count]
	for i := range props {
		props[i].Deref()
	}

	var queryErr error
	families := pickQueueFamilies(props, func(index uint32) bool {
		var supported vk.Bool32
		ret := vk.GetPhysicalDeviceSurfaceSupport(gpu, index, surface, &supported)
		if isError(ret) && queryErr == nil {
			queryErr = newError(ret, "get surface support")
		}
		return supported.B()
	})
	return families, queryErr
}

// queueCreateInfos requests one queue per distinct family, whatever number of
// roles the family fills.
func queueCreateInfos(families QueueFamilies) []vk.DeviceQueueCreateInfo {
	unique := families.Unique()
	infos := make([]vk.DeviceQueueCreateInfo, len(unique))
	for i, family := range unique {
		infos[i] = vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: family,
			QueueCount:       1,
			PQueuePriorities: []float32{1.0},
		}
	}
	return infos
}

// LogicalDevice is the opened handle to the selected processor plus its queues.
type LogicalDevice struct {
	handle        vk.Device
	families      QueueFamilies
	graphicsQueue vk.Queue
	presentQueue  vk.Queue
}

// NewLogicalDevice opens gpu with the swapchain extension and retrieves both queues.
func NewLogicalDevice(gpu PhysicalDeviceInfo, layers []string) (*LogicalDevice, error) {
	queueInfos := queueCreateInfos(gpu.Families)
	extensions := safeStrings(RequiredDeviceExtensions)
	layers = safeStrings(layers)

	var device vk.Device
	ret := vk.CreateDevice(gpu.Handle, &vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       queueInfos,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: extensions,
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     layers,
		PEnabledFeatures:        []vk.PhysicalDeviceFeatures{{}},
	}, nil, &device)
	if err := newError(ret, "create device"); err != nil {
		return nil, err
	}

	d := &LogicalDevice{handle: device, families: gpu.Families}
	vk.GetDeviceQueue(device, uint32(gpu.Families.Graphics), 0, &d.graphicsQueue)
	vk.GetDeviceQueue(device, uint32(gpu.Families.Present), 0, &d.presentQueue)
	return d, nil
}

func (d *LogicalDevice) Handle() vk.Device {
	return d.handle
}

func (d *LogicalDevice) Families() QueueFamilies {
	return d.families
}

func (d *LogicalDevice) GraphicsQueue() vk.Queue {
	return d.graphicsQueue
}

func (d *LogicalDevice) PresentQueue() vk.Queue {
	return d.presentQueue
}

// WaitIdle blocks until no work is in flight on the device.
func (d *LogicalDevice) WaitIdle() error {
	return newError(vk.DeviceWaitIdle(d.handle), "device wait idle")
}

func (d *LogicalDevice) Destroy() {
	if d.handle != nil {
		vk.DestroyDevice(d.handle, nil)
		d.handle = nil
	}
}
