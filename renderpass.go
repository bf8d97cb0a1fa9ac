package vrend

import (
	vk "github.com/vulkan-go/vulkan"
)

// RenderPass describes the single color attachment a frame renders into.
type RenderPass struct {
	handle vk.RenderPass
	format vk.Format
}

// colorAttachment is cleared on load, kept on store and handed to the
// presentation engine at the end of the pass. Prior contents are discarded.
func colorAttachment(format vk.Format) vk.AttachmentDescription {
	return vk.AttachmentDescription{
		Format:         format,
		Samples:        vk.SampleCount1Bit,
		LoadOp:         vk.AttachmentLoadOpClear,
		StoreOp:        vk.AttachmentStoreOpStore,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutUndefined,
		FinalLayout:    vk.ImageLayoutPresentSrc,
	}
}

// externalDependency keeps the pass from writing the attachment before the
// presentation engine has finished reading the image.
func externalDependency() vk.SubpassDependency {
	return vk.SubpassDependency{
		SrcSubpass:    vk.MaxUint32,
		DstSubpass:    0,
		SrcStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		DstStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		SrcAccessMask: 0,
		DstAccessMask: vk.AccessFlags(vk.AccessColorAttachmentWriteBit),
	}
}

// NewRenderPass creates the pass for the swapchain image format.
func NewRenderPass(device vk.Device, format vk.Format) (*RenderPass, error) {
	attachments := []vk.AttachmentDescription{colorAttachment(format)}
	colorRefs := []vk.AttachmentReference{{
		Attachment: 0,
		Layout:     vk.ImageLayoutColorAttachmentOptimal,
	}}
	subpasses := []vk.SubpassDescription{{
		PipelineBindPoint:    vk.PipelineBindPointGraphics,
		ColorAttachmentCount: uint32(len(colorRefs)),
		PColorAttachments:    colorRefs,
	}}
	dependencies := []vk.SubpassDependency{externalDependency()}

	rp := &RenderPass{format: format}
	ret := vk.CreateRenderPass(device, &vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
		SubpassCount:    uint32(len(subpasses)),
		PSubpasses:      subpasses,
		DependencyCount: uint32(len(dependencies)),
		PDependencies:   dependencies,
	}, nil, &rp.handle)
	if err := newError(ret, "create render pass"); err != nil {
		return nil, err
	}
	return rp, nil
}

func (r *RenderPass) Handle() vk.RenderPass {
	return r.handle
}

// Format is the attachment format the pass was built for.
func (r *RenderPass) Format() vk.Format {
	return r.format
}

func (r *RenderPass) Destroy(device vk.Device) {
	if r.handle != vk.NullRenderPass {
		vk.DestroyRenderPass(device, r.handle, nil)
		r.handle = vk.NullRenderPass
	}
}
