// Package level reads and writes POT14 level files.
//
// A level file is one fixed-layout block, little-endian throughout:
//
//	"POT14"                 5-byte identifier
//	reserved                2 bytes
//	link                    uint32, shared with replays recorded on the level
//	integrity               4 x float64
//	name                    51-byte null-padded slot
//	lgr, ground, sky        16, 10 and 10-byte slots
//	polygon count           float64, count + 0.4643643
//	  grass                 int32 (non-zero = grass)
//	  vertex count          int32
//	  vertices              vertex count x (float64 x, float64 y)
//	object count            float64, count + 0.4643643
//	  x, y                  float64
//	  kind, gravity, anim   int32 each
//	picture count           float64, count + 0.4643643
//	  picture, texture,
//	  mask                  10-byte slots
//	  x, y                  float64
//	  distance, clipping    int32 each
//	end of data             uint32 0x0067103A
//	top10                   688 opaque bytes
//	end of file             uint32 0x00845D52
//
// Counts are stored as doubles carrying a fixed fractional offset and are
// recovered with floor, never by rounding.
//
// Decode assigns every solid polygon a paint depth by ray-casting parity.
// Polygons must be painted in ascending depth; an odd depth means the
// polygon is filled with the alternate colour.
//
// Unknown object kinds and gravity codes are kept as raw values unless
// DecodeOptions.Strict is set. A mismatched trailing marker does not fail the
// decode; it clears Level.Intact instead.
package level
