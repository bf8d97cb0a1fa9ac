package vrend

import (
	vk "github.com/vulkan-go/vulkan"
)

// frameAction is what the frame loop does after an acquire or present result.
type frameAction int

const (
	// actionProceed continues the frame normally.
	actionProceed frameAction = iota
	// actionStale continues the frame and rebuilds the chain after present.
	actionStale
	// actionAbandon drops the frame and rebuilds the chain right away.
	actionAbandon
	// actionFail reports the result as an error.
	actionFail
)

func (a frameAction) String() string {
	switch a {
	case actionProceed:
		return "proceed"
	case actionStale:
		return "stale"
	case actionAbandon:
		return "abandon"
	case actionFail:
		return "fail"
	}
	return "unknown"
}

// acquireAction maps the result of acquiring an image. A suboptimal acquire
// still signals the semaphore, so the frame can be drawn.
func acquireAction(ret vk.Result) frameAction {
	switch ret {
	case vk.Success:
		return actionProceed
	case vk.Suboptimal:
		return actionStale
	case vk.ErrorOutOfDate:
		return actionAbandon
	}
	return actionFail
}

// presentAction maps the result of presenting. The presented frame is valid
// either way; only the following frames need a new chain.
func presentAction(ret vk.Result) frameAction {
	switch ret {
	case vk.Success:
		return actionProceed
	case vk.Suboptimal, vk.ErrorOutOfDate:
		return actionStale
	}
	return actionFail
}

// frameSteps are the device calls making up one frame.
type frameSteps interface {
	wait() error
	acquire() (uint32, vk.Result)
	resetFence() error
	record(index uint32) error
	submit() error
	present(index uint32) vk.Result
	rebuild() error
}

// DrawFrame renders and presents one frame. An out-of-date swapchain
// abandons the frame and rebuilds the chain; that is not an error. Any other
// failed call is returned and the renderer should be torn down.
func (r *Renderer) DrawFrame() error {
	if r.destroyed {
		return ErrTornDown
	}
	return r.drawFrame(deviceFrame{r})
}

func (r *Renderer) drawFrame(steps frameSteps) error {
	if r.state == SwapchainStale {
		if err := steps.rebuild(); err != nil {
			return err
		}
	}
	if err := steps.wait(); err != nil {
		return err
	}

	index, ret := steps.acquire()
	switch acquireAction(ret) {
	case actionStale:
		r.markStale("acquire suboptimal")
	case actionAbandon:
		// The fence is still signaled, so the next wait returns at once.
		r.markStale("acquire out of date")
		return steps.rebuild()
	case actionFail:
		return newError(ret, "acquire next image")
	}

	if err := steps.resetFence(); err != nil {
		return err
	}
	if err := steps.record(index); err != nil {
		return err
	}
	if err := steps.submit(); err != nil {
		return err
	}

	ret = steps.present(index)
	switch presentAction(ret) {
	case actionStale:
		r.markStale("present out of date")
	case actionFail:
		return newError(ret, "queue present")
	}

	r.frames++
	Logger().Debug("vulkan: frame presented", "frame", r.frames, "image", index)

	if r.state == SwapchainStale {
		return steps.rebuild()
	}
	return nil
}

// deviceFrame runs the frame steps against the renderer's Vulkan objects.
type deviceFrame struct {
	r *Renderer
}

func (f deviceFrame) timeout() uint64 {
	return f.r.cfg.FrameTimeout.Nanoseconds()
}

func (f deviceFrame) wait() error {
	return f.r.sync.Wait(f.r.device.Handle(), f.timeout())
}

func (f deviceFrame) acquire() (uint32, vk.Result) {
	var index uint32
	ret := vk.AcquireNextImage(f.r.device.Handle(), f.r.swapchain.Handle(), f.timeout(),
		f.r.sync.imageAvailable, vk.NullFence, &index)
	return index, ret
}

func (f deviceFrame) resetFence() error {
	return f.r.sync.Reset(f.r.device.Handle())
}

func (f deviceFrame) record(index uint32) error {
	return f.r.record(f.r.commands.Buffer(), index)
}

func (f deviceFrame) submit() error {
	return f.r.submit(f.r.commands.Buffer())
}

func (f deviceFrame) present(index uint32) vk.Result {
	return f.r.present(index)
}

func (f deviceFrame) rebuild() error {
	return f.r.recreateSwapchain()
}

// record fills cmd with the single render pass of the frame.
func (r *Renderer) record(cmd vk.CommandBuffer, index uint32) error {
	ret := vk.ResetCommandBuffer(cmd, 0)
	if err := newError(ret, "reset command buffer"); err != nil {
		return err
	}
	ret = vk.BeginCommandBuffer(cmd, &vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	})
	if err := newError(ret, "begin command buffer"); err != nil {
		return err
	}

	color := ClearColor(r.frames, r.cfg.ClearPeriod)
	clearValues := []vk.ClearValue{
		vk.NewClearValue(color[:]),
	}
	vk.CmdBeginRenderPass(cmd, &vk.RenderPassBeginInfo{
		SType:           vk.StructureTypeRenderPassBeginInfo,
		RenderPass:      r.renderPass.Handle(),
		Framebuffer:     r.swapchain.Framebuffer(index),
		RenderArea:      r.swapchain.Rect(),
		ClearValueCount: uint32(len(clearValues)),
		PClearValues:    clearValues,
	}, vk.SubpassContentsInline)
	vk.CmdBindPipeline(cmd, vk.PipelineBindPointGraphics, r.pipeline.Handle())
	vk.CmdDraw(cmd, 3, 1, 0, 0)
	vk.CmdEndRenderPass(cmd)

	return newError(vk.EndCommandBuffer(cmd), "end command buffer")
}

// submit queues cmd on the graphics queue. Rendering waits for the acquired
// image at the color output stage; the fence signals full completion.
func (r *Renderer) submit(cmd vk.CommandBuffer) error {
	submitInfo := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{r.sync.imageAvailable},
		PWaitDstStageMask: []vk.PipelineStageFlags{
			vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		},
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{cmd},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{r.sync.renderFinished},
	}
	ret := vk.QueueSubmit(r.device.GraphicsQueue(), 1, []vk.SubmitInfo{submitInfo}, r.sync.inFlight)
	return newError(ret, "queue submit")
}

func (r *Renderer) present(index uint32) vk.Result {
	return vk.QueuePresent(r.device.PresentQueue(), &vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{r.sync.renderFinished},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{r.swapchain.Handle()},
		PImageIndices:      []uint32{index},
	})
}
