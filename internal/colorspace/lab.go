package colorspace

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// D65 reference white, XYZ scaled to 0..100.
const (
	WhiteX = 95.047
	WhiteY = 100.0
	WhiteZ = 108.883
)

const (
	labEpsilon = 0.008856
	labKappa   = 7.787
	labOffset  = 16.0 / 116.0
	// cube root of labEpsilon; below it f() is in its linear segment.
	labInverseBreak = 0.206897
)

// Lab is a CIE L*a*b* color. L is in [0,100]; a and b are unbounded but
// roughly within [-128,127] for sRGB inputs.
type Lab struct {
	L float64
	A float64
	B float64
}

func (c Lab) String() string {
	return fmt.Sprintf("Lab(%.2f, %.2f, %.2f)", c.L, c.A, c.B)
}

var (
	rgbToXYZ = [3][3]float64{
		{0.4124564, 0.3575761, 0.1804375},
		{0.2126729, 0.7151522, 0.0721750},
		{0.0193339, 0.1191920, 0.9503041},
	}
	xyzToRGB [3][3]float64
)

func init() {
	forward := mat.NewDense(3, 3, nil)
	for i := range 3 {
		for j := range 3 {
			forward.Set(i, j, rgbToXYZ[i][j])
		}
	}
	var inverse mat.Dense
	if err := inverse.Inverse(forward); err != nil {
		panic(fmt.Sprintf("colorspace: invert sRGB matrix: %v", err))
	}
	for i := range 3 {
		for j := range 3 {
			xyzToRGB[i][j] = inverse.At(i, j)
		}
	}
}

// SRGBToLab converts an 8-bit sRGB triple to Lab.
func SRGBToLab(r, g, b uint8) Lab {
	lr := expand(float64(r) / 255)
	lg := expand(float64(g) / 255)
	lb := expand(float64(b) / 255)

	x := (rgbToXYZ[0][0]*lr + rgbToXYZ[0][1]*lg + rgbToXYZ[0][2]*lb) * 100
	y := (rgbToXYZ[1][0]*lr + rgbToXYZ[1][1]*lg + rgbToXYZ[1][2]*lb) * 100
	z := (rgbToXYZ[2][0]*lr + rgbToXYZ[2][1]*lg + rgbToXYZ[2][2]*lb) * 100

	fx := labF(x / WhiteX)
	fy := labF(y / WhiteY)
	fz := labF(z / WhiteZ)
	return Lab{
		L: 116*fy - 16,
		A: 500 * (fx - fy),
		B: 200 * (fy - fz),
	}
}

// LabToSRGB converts Lab back to 8-bit sRGB, clamping out-of-gamut channels.
func LabToSRGB(c Lab) (r, g, b uint8) {
	fy := (c.L + 16) / 116
	fx := fy + c.A/500
	fz := fy - c.B/200

	x := labFInverse(fx) * WhiteX / 100
	y := labFInverse(fy) * WhiteY / 100
	z := labFInverse(fz) * WhiteZ / 100

	lr := xyzToRGB[0][0]*x + xyzToRGB[0][1]*y + xyzToRGB[0][2]*z
	lg := xyzToRGB[1][0]*x + xyzToRGB[1][1]*y + xyzToRGB[1][2]*z
	lb := xyzToRGB[2][0]*x + xyzToRGB[2][1]*y + xyzToRGB[2][2]*z
	return to8(compress(lr)), to8(compress(lg)), to8(compress(lb))
}

// DeltaE76 is the Euclidean distance between two Lab colors.
func DeltaE76(a, b Lab) float64 {
	dl := a.L - b.L
	da := a.A - b.A
	db := a.B - b.B
	return math.Sqrt(dl*dl + da*da + db*db)
}

// Luminance is the Rec. 601 luma of an 8-bit triple, in [0,255].
func Luminance(r, g, b uint8) float64 {
	return 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
}

// ShiftChroma keeps the lightness of c and moves its a/b components toward
// target by blend (0 = unchanged, 1 = target chroma).
func ShiftChroma(c, target Lab, blend float64) Lab {
	return Lab{
		L: c.L,
		A: c.A + (target.A-c.A)*blend,
		B: c.B + (target.B-c.B)*blend,
	}
}

func expand(v float64) float64 {
	if v > 0.04045 {
		return math.Pow((v+0.055)/1.055, 2.4)
	}
	return v / 12.92
}

func compress(v float64) float64 {
	if v > 0.0031308 {
		return 1.055*math.Pow(v, 1/2.4) - 0.055
	}
	return 12.92 * v
}

func labF(t float64) float64 {
	if t > labEpsilon {
		return math.Cbrt(t)
	}
	return labKappa*t + labOffset
}

func labFInverse(f float64) float64 {
	if f > labInverseBreak {
		return f * f * f
	}
	return (f - labOffset) / labKappa
}

func to8(v float64) uint8 {
	v = math.Round(v * 255)
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v)
	}
}
