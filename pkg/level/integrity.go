package level

import (
	"math/rand/v2"

	"github.com/keex74/ElmaReplayIO/pkg/core"
)

const integrityScale = 3247.764325643

// integrity computes the four legacy integrity values. Only the sections that
// are actually written contribute to the sum.
func integrity(l *core.Level, opts EncodeOptions, rng *rand.Rand) [4]float64 {
	sum := 0.0
	if opts.Vertices {
		for _, set := range [][]core.Polygon{l.Polygons, l.Grass} {
			for _, p := range set {
				for _, v := range p.Vertices {
					sum += v.X + v.Y
				}
			}
		}
	}
	if opts.Objects {
		for _, o := range l.Objects {
			sum += o.Position.X + o.Position.Y + float64(o.Kind)
		}
	}
	if opts.Pictures {
		for _, p := range l.Pictures {
			sum += p.Position.X + p.Position.Y
		}
	}
	sum *= integrityScale

	return [4]float64{
		sum,
		float64(rng.IntN(5871)) + 11877 - sum,
		float64(rng.IntN(5871)) + 11877 - sum,
		float64(rng.IntN(6102)) + 12112 - sum,
	}
}
