package vrend

import (
	vk "github.com/vulkan-go/vulkan"
)

// FrameSync holds the primitives of the single frame in flight: a semaphore
// signaled when the acquired image is ready, one signaled when rendering is
// done, and a fence the CPU waits on before reusing the command buffer.
type FrameSync struct {
	imageAvailable vk.Semaphore
	renderFinished vk.Semaphore
	inFlight       vk.Fence
}

// NewFrameSync creates the set. The fence starts signaled so the first wait
// returns immediately.
func NewFrameSync(device vk.Device) (*FrameSync, error) {
	s := &FrameSync{}
	semaphoreInfo := &vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}
	ret := vk.CreateSemaphore(device, semaphoreInfo, nil, &s.imageAvailable)
	if err := newError(ret, "create semaphore"); err != nil {
		return nil, err
	}
	ret = vk.CreateSemaphore(device, semaphoreInfo, nil, &s.renderFinished)
	if err := newError(ret, "create semaphore"); err != nil {
		s.Destroy(device)
		return nil, err
	}
	ret = vk.CreateFence(device, &vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
		Flags: vk.FenceCreateFlags(vk.FenceCreateSignaledBit),
	}, nil, &s.inFlight)
	if err := newError(ret, "create fence"); err != nil {
		s.Destroy(device)
		return nil, err
	}
	return s, nil
}

// Wait blocks until the previous frame's GPU work is complete.
func (s *FrameSync) Wait(device vk.Device, timeout uint64) error {
	ret := vk.WaitForFences(device, 1, []vk.Fence{s.inFlight}, vk.True, timeout)
	return newError(ret, "wait for frame fence")
}

// Reset returns the fence to the unsignaled state ahead of the next submit.
func (s *FrameSync) Reset(device vk.Device) error {
	return newError(vk.ResetFences(device, 1, []vk.Fence{s.inFlight}), "reset frame fence")
}

func (s *FrameSync) Destroy(device vk.Device) {
	if s.inFlight != vk.NullFence {
		vk.DestroyFence(device, s.inFlight, nil)
		s.inFlight = vk.NullFence
	}
	if s.renderFinished != vk.NullSemaphore {
		vk.DestroySemaphore(device, s.renderFinished, nil)
		s.renderFinished = vk.NullSemaphore
	}
	if s.imageAvailable != vk.NullSemaphore {
		vk.DestroySemaphore(device, s.imageAvailable, nil)
		s.imageAvailable = vk.NullSemaphore
	}
}
