package vrend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

func TestAcquireAction(t *testing.T) {
	tests := []struct {
		ret  vk.Result
		want frameAction
	}{
		{vk.Success, actionProceed},
		{vk.Suboptimal, actionStale},
		{vk.ErrorOutOfDate, actionAbandon},
		{vk.Timeout, actionFail},
		{vk.NotReady, actionFail},
		{vk.ErrorDeviceLost, actionFail},
		{vk.ErrorSurfaceLost, actionFail},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, acquireAction(tt.ret), "result %d", tt.ret)
	}
}

func TestPresentAction(t *testing.T) {
	tests := []struct {
		ret  vk.Result
		want frameAction
	}{
		{vk.Success, actionProceed},
		{vk.Suboptimal, actionStale},
		{vk.ErrorOutOfDate, actionStale},
		{vk.ErrorDeviceLost, actionFail},
		{vk.ErrorOutOfHostMemory, actionFail},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, presentAction(tt.ret), "result %d", tt.ret)
	}
}

// scriptedFrame records the steps a frame takes. rebuild brings the chain
// back to ready, like a successful recreation.
type scriptedFrame struct {
	r          *Renderer
	acquireRet vk.Result
	presentRet vk.Result
	calls      []string
	// stateAtRebuild is the swapchain state seen by each rebuild.
	stateAtRebuild []SwapchainState
}

func (f *scriptedFrame) wait() error {
	f.calls = append(f.calls, "wait")
	return nil
}

func (f *scriptedFrame) acquire() (uint32, vk.Result) {
	f.calls = append(f.calls, "acquire")
	return 1, f.acquireRet
}

func (f *scriptedFrame) resetFence() error {
	f.calls = append(f.calls, "reset fence")
	return nil
}

func (f *scriptedFrame) record(index uint32) error {
	f.calls = append(f.calls, "record")
	return nil
}

func (f *scriptedFrame) submit() error {
	f.calls = append(f.calls, "submit")
	return nil
}

func (f *scriptedFrame) present(index uint32) vk.Result {
	f.calls = append(f.calls, "present")
	return f.presentRet
}

func (f *scriptedFrame) rebuild() error {
	f.calls = append(f.calls, "rebuild")
	f.stateAtRebuild = append(f.stateAtRebuild, f.r.state)
	f.r.state = SwapchainReady
	return nil
}

func newScriptedFrame(acquireRet, presentRet vk.Result) (*Renderer, *scriptedFrame) {
	r := &Renderer{state: SwapchainReady}
	return r, &scriptedFrame{r: r, acquireRet: acquireRet, presentRet: presentRet}
}

var fullFrame = []string{"wait", "acquire", "reset fence", "record", "submit", "present"}

func TestDrawFrameSteadyState(t *testing.T) {
	r, f := newScriptedFrame(vk.Success, vk.Success)
	for i := 0; i < 3; i++ {
		require.NoError(t, r.drawFrame(f))
	}
	assert.Equal(t, uint64(3), r.FrameCount())
	assert.Equal(t, SwapchainReady, r.SwapchainState())
	assert.Empty(t, f.stateAtRebuild)
	assert.Equal(t, fullFrame, f.calls[:len(fullFrame)])
	assert.Len(t, f.calls, 3*len(fullFrame))
}

func TestDrawFrameAcquireOutOfDateAbandonsFrame(t *testing.T) {
	r, f := newScriptedFrame(vk.ErrorOutOfDate, vk.Success)
	require.NoError(t, r.drawFrame(f))

	assert.Equal(t, []string{"wait", "acquire", "rebuild"}, f.calls,
		"no fence reset, recording or present")
	assert.Equal(t, []SwapchainState{SwapchainStale}, f.stateAtRebuild)
	assert.Zero(t, r.FrameCount())
}

func TestDrawFrameAcquireSuboptimalDrawsThenRebuilds(t *testing.T) {
	r, f := newScriptedFrame(vk.Suboptimal, vk.Success)
	require.NoError(t, r.drawFrame(f))

	assert.Equal(t, append(append([]string{}, fullFrame...), "rebuild"), f.calls)
	assert.Equal(t, []SwapchainState{SwapchainStale}, f.stateAtRebuild)
	assert.Equal(t, uint64(1), r.FrameCount())
	assert.Equal(t, SwapchainReady, r.SwapchainState())
}

func TestDrawFramePresentMarksStale(t *testing.T) {
	for _, ret := range []vk.Result{vk.Suboptimal, vk.ErrorOutOfDate} {
		r, f := newScriptedFrame(vk.Success, ret)
		require.NoError(t, r.drawFrame(f))

		assert.Equal(t, append(append([]string{}, fullFrame...), "rebuild"), f.calls, "result %d", ret)
		assert.Equal(t, []SwapchainState{SwapchainStale}, f.stateAtRebuild)
		assert.Equal(t, uint64(1), r.FrameCount(), "the presented frame counts")
	}
}

func TestDrawFrameRebuildsStaleChainFirst(t *testing.T) {
	r, f := newScriptedFrame(vk.Success, vk.Success)
	r.NotifyResized()
	require.NoError(t, r.drawFrame(f))

	assert.Equal(t, append([]string{"rebuild"}, fullFrame...), f.calls)
	assert.Equal(t, uint64(1), r.FrameCount())
}

func TestDrawFrameErrors(t *testing.T) {
	r, f := newScriptedFrame(vk.ErrorDeviceLost, vk.Success)
	err := r.drawFrame(f)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "acquire next image")
	assert.Equal(t, []string{"wait", "acquire"}, f.calls)

	r, f = newScriptedFrame(vk.Timeout, vk.Success)
	assert.ErrorIs(t, r.drawFrame(f), ErrTimeout)

	r, f = newScriptedFrame(vk.Success, vk.ErrorSurfaceLost)
	err = r.drawFrame(f)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "queue present")
	assert.Zero(t, r.FrameCount())
}

func TestFrameActionString(t *testing.T) {
	assert.Equal(t, "proceed", actionProceed.String())
	assert.Equal(t, "abandon", actionAbandon.String())
	assert.Equal(t, "unknown", frameAction(9).String())
}
