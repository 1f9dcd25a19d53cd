package level

import "github.com/keex74/ElmaReplayIO/pkg/core"

// ScrambleTop10 applies the game's keystream to a best-times block. The
// transform is its own inverse, so it both encodes and decodes.
func ScrambleTop10(b []byte) []byte {
	out := make([]byte, len(b))
	var k int16 = 0x15
	var acc int16 = 0x2637
	for i, c := range b {
		out[i] = c ^ byte(k)
		acc += (k % 0xD3D) * 0xD3D
		k = acc*0x1F + 0xD3D
	}
	return out
}

// EmptyTop10 returns the stored form of a best-times block with no entries.
func EmptyTop10() []byte {
	return ScrambleTop10(make([]byte, core.Top10Size))
}
