package vrend

import (
	vk "github.com/vulkan-go/vulkan"
)

// CommandPool owns the single primary command buffer recorded every frame.
type CommandPool struct {
	pool   vk.CommandPool
	buffer vk.CommandBuffer
}

// NewCommandPool creates a pool on the graphics family whose buffers can be
// reset individually, and allocates one primary buffer from it.
func NewCommandPool(device vk.Device, familyIndex uint32) (*CommandPool, error) {
	c := &CommandPool{}
	ret := vk.CreateCommandPool(device, &vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: familyIndex,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
	}, nil, &c.pool)
	if err := newError(ret, "create command pool"); err != nil {
		return nil, err
	}

	buffers := make([]vk.CommandBuffer, 1)
	ret = vk.AllocateCommandBuffers(device, &vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        c.pool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	}, buffers)
	if err := newError(ret, "allocate command buffer"); err != nil {
		vk.DestroyCommandPool(device, c.pool, nil)
		return nil, err
	}
	c.buffer = buffers[0]
	return c, nil
}

func (c *CommandPool) Buffer() vk.CommandBuffer {
	return c.buffer
}

// Destroy frees the buffer and the pool.
func (c *CommandPool) Destroy(device vk.Device) {
	if c.pool == vk.NullCommandPool {
		return
	}
	if c.buffer != nil {
		vk.FreeCommandBuffers(device, c.pool, 1, []vk.CommandBuffer{c.buffer})
		c.buffer = nil
	}
	vk.DestroyCommandPool(device, c.pool, nil)
	c.pool = vk.NullCommandPool
}
