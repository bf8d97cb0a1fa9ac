package vrend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

func families(flags ...vk.QueueFlagBits) []vk.QueueFamilyProperties {
	props := make([]vk.QueueFamilyProperties, len(flags))
	for i, f := range flags {
		props[i] = vk.QueueFamilyProperties{QueueFlags: vk.QueueFlags(f), QueueCount: 1}
	}
	return props
}

func presentOn(indices ...uint32) func(uint32) bool {
	return func(index uint32) bool {
		for _, i := range indices {
			if i == index {
				return true
			}
		}
		return false
	}
}

func TestPickQueueFamiliesCombined(t *testing.T) {
	props := families(vk.QueueTransferBit, vk.QueueGraphicsBit|vk.QueueComputeBit, vk.QueueGraphicsBit)
	got := pickQueueFamilies(props, presentOn(1, 2))

	assert.Equal(t, QueueFamilies{Graphics: 1, Present: 1}, got)
	assert.True(t, got.Complete())
	assert.False(t, got.Separate())
}

func TestPickQueueFamiliesSeparate(t *testing.T) {
	props := families(vk.QueueGraphicsBit, vk.QueueTransferBit)
	got := pickQueueFamilies(props, presentOn(1))

	assert.Equal(t, QueueFamilies{Graphics: 0, Present: 1}, got)
	assert.True(t, got.Separate())
}

func TestPickQueueFamiliesIncomplete(t *testing.T) {
	got := pickQueueFamilies(families(vk.QueueComputeBit), presentOn(0))
	assert.Equal(t, -1, got.Graphics)
	assert.Equal(t, 0, got.Present)
	assert.False(t, got.Complete())

	got = pickQueueFamilies(families(vk.QueueGraphicsBit), presentOn())
	assert.False(t, got.Complete())
}

func TestQueueCreateInfosDeduplicates(t *testing.T) {
	infos := queueCreateInfos(QueueFamilies{Graphics: 2, Present: 2})
	require.Len(t, infos, 1)
	assert.Equal(t, uint32(2), infos[0].QueueFamilyIndex)
	assert.Equal(t, uint32(1), infos[0].QueueCount)

	infos = queueCreateInfos(QueueFamilies{Graphics: 0, Present: 3})
	require.Len(t, infos, 2)
	assert.Equal(t, uint32(0), infos[0].QueueFamilyIndex)
	assert.Equal(t, uint32(3), infos[1].QueueFamilyIndex)
	for _, info := range infos {
		assert.Equal(t, uint32(1), info.QueueCount)
		assert.Equal(t, []float32{1.0}, info.PQueuePriorities)
	}
}

func TestSharingMode(t *testing.T) {
	mode, indices := QueueFamilies{Graphics: 1, Present: 1}.SharingMode()
	assert.Equal(t, vk.SharingModeExclusive, mode)
	assert.Empty(t, indices)

	mode, indices = QueueFamilies{Graphics: 0, Present: 1}.SharingMode()
	assert.Equal(t, vk.SharingModeConcurrent, mode)
	assert.Equal(t, []uint32{0, 1}, indices)
}
