package rawstream

import (
	"math/rand/v2"

	"github.com/leijurv/jpeg_coef_go/coef"
)

// Synthesize makes coefficient arrays for f: a smooth DC ramp per component
// and sparse low-frequency AC noise. The same seed gives the same arrays.
func Synthesize(f *coef.Frame, seed uint64) []coef.BlockArray {
	rng := rand.New(rand.NewPCG(seed, uint64(len(f.Components))))
	arrays := make([]coef.BlockArray, len(f.Components))
	for ci := range f.Components {
		c := &f.Components[ci]
		w, h := c.StoreWidth(), c.StoreHeight()
		arr := coef.NewMemoryArray(w, h, 3*c.VSamp)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				b := arr.BlockXY(x, y)
				b.SetDC(int16(8*(x+y) - 4*(w+h) + 16*ci))
				for k := 1; k < 16; k++ {
					if rng.IntN(3) != 0 {
						continue
					}
					span := 64 / k
					b.SetZigzag(k, int16(rng.IntN(2*span+1)-span))
				}
			}
		}
		arrays[ci] = arr
	}
	return arrays
}

// SynthFrame builds a frame with the usual 4:2:0 layout for three
// components, or a single component for one.
func SynthFrame(width, height, components int, progressive bool, quality uint16) (*coef.Frame, error) {
	comps := make([]coef.ComponentInfo, components)
	for i := range comps {
		comps[i] = coef.ComponentInfo{ID: i + 1, HSamp: 1, VSamp: 1, QuantTable: rampQuant(quality)}
	}
	if components >= 3 {
		comps[0].HSamp, comps[0].VSamp = 2, 2
	}
	return coef.NewFrame(width, height, progressive, comps)
}

// rampQuant returns a table whose quantizers grow with frequency
func rampQuant(base uint16) *coef.QuantTable {
	if base == 0 {
		base = 1
	}
	qt := &coef.QuantTable{}
	for row := 0; row < coef.DCTSize; row++ {
		for col := 0; col < coef.DCTSize; col++ {
			qt[row*coef.DCTSize+col] = base + uint16(row+col)
		}
	}
	return qt
}
