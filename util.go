package vrend

import (
	"encoding/binary"

	vk "github.com/vulkan-go/vulkan"
)

const nullTerm = "\x00"

func safeString(s string) string {
	if len(s) > 0 && s[len(s)-1] == 0 {
		return s
	}
	return s + nullTerm
}

func safeStrings(list []string) []string {
	out := make([]string, len(list))
	for i := range list {
		out[i] = safeString(list[i])
	}
	return out
}

func trimNull(s string) string {
	if len(s) > 0 && s[len(s)-1] == 0 {
		return s[:len(s)-1]
	}
	return s
}

// missingNames returns every wanted name that is absent from available.
func missingNames(available, wanted []string) []string {
	have := make(map[string]struct{}, len(available))
	for _, name := range available {
		have[trimNull(name)] = struct{}{}
	}
	var missing []string
	for _, name := range wanted {
		if _, ok := have[trimNull(name)]; !ok {
			missing = append(missing, trimNull(name))
		}
	}
	return missing
}

// sliceUint32 copies SPIR-V bytes into the little-endian word slice Vulkan expects.
// Trailing bytes that do not form a full word are dropped.
func sliceUint32(data []byte) []uint32 {
	words := make([]uint32, len(data)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(data[i*4:])
	}
	return words
}

func extentIsZero(e vk.Extent2D) bool {
	return e.Width == 0 || e.Height == 0
}
