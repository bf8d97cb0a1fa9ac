package vrend

import (
	vk "github.com/vulkan-go/vulkan"
)

// PipelineOptions are the configurable parts of the fixed-function state.
type PipelineOptions struct {
	AlphaBlend bool
	CullMode   CullMode
}

// Pipeline is the compiled triangle pipeline and its (empty) layout.
type Pipeline struct {
	layout vk.PipelineLayout
	handle vk.Pipeline
	extent vk.Extent2D
}

// PipelineBuilder collects the fixed-function state of the triangle pipeline.
// Vertices come from gl_VertexIndex, so there is no vertex input, and the
// viewport is baked in rather than dynamic.
type PipelineBuilder struct {
	vertexInput     vk.PipelineVertexInputStateCreateInfo
	inputAssembly   vk.PipelineInputAssemblyStateCreateInfo
	viewport        vk.Viewport
	scissor         vk.Rect2D
	rasterizer      vk.PipelineRasterizationStateCreateInfo
	multisampling   vk.PipelineMultisampleStateCreateInfo
	blendAttachment vk.PipelineColorBlendAttachmentState
}

// NewPipelineBuilder configures the state for a swapchain of the given extent.
func NewPipelineBuilder(extent vk.Extent2D, opts PipelineOptions) *PipelineBuilder {
	return &PipelineBuilder{
		vertexInput: vk.PipelineVertexInputStateCreateInfo{
			SType: vk.StructureTypePipelineVertexInputStateCreateInfo,
		},
		inputAssembly: vk.PipelineInputAssemblyStateCreateInfo{
			SType:                  vk.StructureTypePipelineInputAssemblyStateCreateInfo,
			Topology:               vk.PrimitiveTopologyTriangleList,
			PrimitiveRestartEnable: vk.False,
		},
		viewport: viewportFor(extent),
		scissor:  vk.Rect2D{Offset: vk.Offset2D{}, Extent: extent},
		rasterizer: vk.PipelineRasterizationStateCreateInfo{
			SType:                   vk.StructureTypePipelineRasterizationStateCreateInfo,
			DepthClampEnable:        vk.False,
			RasterizerDiscardEnable: vk.False,
			PolygonMode:             vk.PolygonModeFill,
			CullMode:                opts.CullMode.flags(),
			FrontFace:               vk.FrontFaceClockwise,
			DepthBiasEnable:         vk.False,
			LineWidth:               1.0,
		},
		multisampling: vk.PipelineMultisampleStateCreateInfo{
			SType:                vk.StructureTypePipelineMultisampleStateCreateInfo,
			RasterizationSamples: vk.SampleCount1Bit,
			SampleShadingEnable:  vk.False,
			MinSampleShading:     1.0,
		},
		blendAttachment: colorBlendAttachment(opts.AlphaBlend),
	}
}

func viewportFor(extent vk.Extent2D) vk.Viewport {
	return vk.Viewport{
		X:        0,
		Y:        0,
		Width:    float32(extent.Width),
		Height:   float32(extent.Height),
		MinDepth: 0,
		MaxDepth: 1,
	}
}

// colorBlendAttachment writes all four channels, alpha-over when alpha is set.
func colorBlendAttachment(alpha bool) vk.PipelineColorBlendAttachmentState {
	state := vk.PipelineColorBlendAttachmentState{
		ColorWriteMask: vk.ColorComponentFlags(vk.ColorComponentRBit | vk.ColorComponentGBit |
			vk.ColorComponentBBit | vk.ColorComponentABit),
		BlendEnable: vk.False,
	}
	if alpha {
		state.BlendEnable = vk.True
		state.SrcColorBlendFactor = vk.BlendFactorSrcAlpha
		state.DstColorBlendFactor = vk.BlendFactorOneMinusSrcAlpha
		state.ColorBlendOp = vk.BlendOpAdd
		state.SrcAlphaBlendFactor = vk.BlendFactorOne
		state.DstAlphaBlendFactor = vk.BlendFactorZero
		state.AlphaBlendOp = vk.BlendOpAdd
	}
	return state
}

// Build creates the empty pipeline layout and the pipeline for subpass 0 of renderPass.
func (b *PipelineBuilder) Build(device vk.Device, renderPass vk.RenderPass, program *ShaderProgram) (*Pipeline, error) {
	p := &Pipeline{extent: b.scissor.Extent}
	ret := vk.CreatePipelineLayout(device, &vk.PipelineLayoutCreateInfo{
		SType: vk.StructureTypePipelineLayoutCreateInfo,
	}, nil, &p.layout)
	if err := newError(ret, "create pipeline layout"); err != nil {
		return nil, err
	}

	viewportState := vk.PipelineViewportStateCreateInfo{
		SType:         vk.StructureTypePipelineViewportStateCreateInfo,
		ViewportCount: 1,
		PViewports:    []vk.Viewport{b.viewport},
		ScissorCount:  1,
		PScissors:     []vk.Rect2D{b.scissor},
	}
	blendState := vk.PipelineColorBlendStateCreateInfo{
		SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
		LogicOpEnable:   vk.False,
		LogicOp:         vk.LogicOpCopy,
		AttachmentCount: 1,
		PAttachments:    []vk.PipelineColorBlendAttachmentState{b.blendAttachment},
	}
	stages := program.stages()

	pipelines := make([]vk.Pipeline, 1)
	ret = vk.CreateGraphicsPipelines(device, nil, 1, []vk.GraphicsPipelineCreateInfo{{
		SType:               vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount:          uint32(len(stages)),
		PStages:             stages,
		PVertexInputState:   &b.vertexInput,
		PInputAssemblyState: &b.inputAssembly,
		PViewportState:      &viewportState,
		PRasterizationState: &b.rasterizer,
		PMultisampleState:   &b.multisampling,
		PColorBlendState:    &blendState,
		Layout:              p.layout,
		RenderPass:          renderPass,
		Subpass:             0,
		BasePipelineIndex:   -1,
	}}, nil, pipelines)
	if err := newError(ret, "create graphics pipeline"); err != nil {
		vk.DestroyPipelineLayout(device, p.layout, nil)
		return nil, err
	}
	p.handle = pipelines[0]
	return p, nil
}

// BuildPipeline loads the shader stages, builds the pipeline and frees the
// stages again.
func BuildPipeline(device vk.Device, renderPass vk.RenderPass, extent vk.Extent2D,
	src ShaderSource, cfg Config) (*Pipeline, error) {

	program, err := NewShaderProgram(device, src, cfg.VertexShader, cfg.FragmentShader)
	if err != nil {
		return nil, err
	}
	defer program.Destroy(device)

	builder := NewPipelineBuilder(extent, PipelineOptions{AlphaBlend: cfg.AlphaBlend, CullMode: cfg.CullMode})
	return builder.Build(device, renderPass, program)
}

func (p *Pipeline) Handle() vk.Pipeline {
	return p.handle
}

// Extent is the viewport size baked into the pipeline.
func (p *Pipeline) Extent() vk.Extent2D {
	return p.extent
}

// DestroyPipeline releases the pipeline only.
func (p *Pipeline) DestroyPipeline(device vk.Device) {
	if p.handle != vk.NullPipeline {
		vk.DestroyPipeline(device, p.handle, nil)
		p.handle = vk.NullPipeline
	}
}

// DestroyLayout releases the pipeline layout.
func (p *Pipeline) DestroyLayout(device vk.Device) {
	if p.layout != vk.NullPipelineLayout {
		vk.DestroyPipelineLayout(device, p.layout, nil)
		p.layout = vk.NullPipelineLayout
	}
}

// Destroy releases the pipeline, then its layout.
func (p *Pipeline) Destroy(device vk.Device) {
	p.DestroyPipeline(device)
	p.DestroyLayout(device)
}
