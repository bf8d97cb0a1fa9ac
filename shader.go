package vrend

import (
	"os"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

//go:generate glslc shaders/triangle.vert -o shaders/vert.spv
//go:generate glslc shaders/triangle.frag -o shaders/frag.spv

// ShaderSource supplies precompiled SPIR-V binaries.
type ShaderSource interface {
	ReadShader(path string) ([]byte, error)
}

// FileShaderSource reads shaders from the filesystem, relative to the working directory.
type FileShaderSource struct{}

func (FileShaderSource) ReadShader(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	return data, errors.Wrapf(err, "read shader %s", path)
}

// LoadShaderModule wraps SPIR-V bytes in a shader module.
func LoadShaderModule(device vk.Device, data []byte) (vk.ShaderModule, error) {
	if len(data) == 0 || len(data)%4 != 0 {
		return vk.NullShaderModule, errors.Errorf("invalid SPIR-V size %d", len(data))
	}
	var module vk.ShaderModule
	ret := vk.CreateShaderModule(device, &vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(data)),
		PCode:    sliceUint32(data),
	}, nil, &module)
	if isError(ret) {
		return vk.NullShaderModule, newError(ret, "create shader module")
	}
	return module, nil
}

// ShaderProgram is the vertex and fragment stage pair of the pipeline. The
// modules are only needed until the pipeline is created.
type ShaderProgram struct {
	vertex   vk.ShaderModule
	fragment vk.ShaderModule
}

// NewShaderProgram reads and wraps both stages.
func NewShaderProgram(device vk.Device, src ShaderSource, vertexPath, fragmentPath string) (*ShaderProgram, error) {
	vertCode, err := src.ReadShader(vertexPath)
	if err != nil {
		return nil, err
	}
	fragCode, err := src.ReadShader(fragmentPath)
	if err != nil {
		return nil, err
	}
	p := &ShaderProgram{}
	if p.vertex, err = LoadShaderModule(device, vertCode); err != nil {
		return nil, errors.Wrap(err, vertexPath)
	}
	if p.fragment, err = LoadShaderModule(device, fragCode); err != nil {
		p.Destroy(device)
		return nil, errors.Wrap(err, fragmentPath)
	}
	return p, nil
}

func (p *ShaderProgram) stages() []vk.PipelineShaderStageCreateInfo {
	return []vk.PipelineShaderStageCreateInfo{
		{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageVertexBit,
			Module: p.vertex,
			PName:  safeString("main"),
		},
		{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageFragmentBit,
			Module: p.fragment,
			PName:  safeString("main"),
		},
	}
}

func (p *ShaderProgram) Destroy(device vk.Device) {
	if p.vertex != vk.NullShaderModule {
		vk.DestroyShaderModule(device, p.vertex, nil)
		p.vertex = vk.NullShaderModule
	}
	if p.fragment != vk.NullShaderModule {
		vk.DestroyShaderModule(device, p.fragment, nil)
		p.fragment = vk.NullShaderModule
	}
}
