package vrend

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memShaders map[string][]byte

func (m memShaders) ReadShader(path string) ([]byte, error) {
	data, ok := m[path]
	if !ok {
		return nil, errors.Errorf("read shader %s: not found", path)
	}
	return data, nil
}

func TestLoadShaderModuleRejectsBadSize(t *testing.T) {
	_, err := LoadShaderModule(nil, nil)
	assert.EqualError(t, err, "invalid SPIR-V size 0")

	_, err = LoadShaderModule(nil, []byte{0x03, 0x02, 0x23, 0x07, 0x00})
	assert.EqualError(t, err, "invalid SPIR-V size 5")
}

func TestNewShaderProgramReadErrors(t *testing.T) {
	src := memShaders{"frag.spv": {0, 0, 0, 0}}
	_, err := NewShaderProgram(nil, src, "vert.spv", "frag.spv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vert.spv")

	src = memShaders{"vert.spv": {1, 2, 3}, "frag.spv": {0, 0, 0, 0}}
	_, err = NewShaderProgram(nil, src, "vert.spv", "frag.spv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vert.spv: invalid SPIR-V size 3")
}

func TestFileShaderSourceMissing(t *testing.T) {
	_, err := FileShaderSource{}.ReadShader("testdata/none.spv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read shader testdata/none.spv")
}
