// Package replay reads and writes .rec replay files.
//
// A replay is one or more rides written back to back with no outer framing;
// the end of the last ride is the end of the stream. Each ride is:
//
//	header   frame count int32, version uint32 (0x83), multi-ride int32,
//	         flag-tag int32, link uint32, level name (12-byte slot + 4 reserved)
//	frames   14 columns of frame-count elements each:
//	         float32 bike x, bike y (stored negated)
//	         int16 left wheel x/y, right wheel x/y, head x/y, bike rotation
//	         byte left/right wheel rotation, throttle bits, back wheel speed,
//	         collision strength
//	events   int32 count, then 16-byte records:
//	         float64 time, int16 object id, byte kind, byte value,
//	         float32 ground touch strength
//	trailer  uint32 0x00492F75
//
// Frames are decoded column by column and transposed into rows afterwards.
// A ride is decoded atomically: any failure, including a wrong trailer,
// discards the whole ride.
//
// Encoders build the complete output in memory and write it only once every
// ride has been validated, so a failed Encode leaves the destination
// untouched.
package replay
