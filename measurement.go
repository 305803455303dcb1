package pptdom

import (
	"fmt"
	"math"
)

// EMU (English Metric Units) conversion helpers.
// 1 inch = 914400 EMU, 1 point = 12700 EMU, 1 cm = 360000 EMU.

const (
	emuPerInch       = 914400
	emuPerPoint      = 12700
	emuPerCentimeter = 360000
	// maxEMU is the maximum safe EMU value to prevent overflow.
	maxEMU = math.MaxInt64 / 2

	// DefaultResolution is the logical screen resolution in pixels per inch.
	DefaultResolution float64 = 96
)

// Inch converts inches to EMU. Clamps to safe range.
func Inch(n float64) int64 {
	return clampEMU(n * emuPerInch)
}

// Point converts points to EMU.
func Point(n float64) int64 {
	return clampEMU(n * emuPerPoint)
}

// Centimeter converts centimeters to EMU.
func Centimeter(n float64) int64 {
	return clampEMU(n * emuPerCentimeter)
}

// EMUToInch converts EMU to inches.
func EMUToInch(emu int64) float64 {
	return float64(emu) / emuPerInch
}

// EMUToPoint converts EMU to points.
func EMUToPoint(emu int64) float64 {
	return float64(emu) / emuPerPoint
}

// clampEMU converts a float64 to int64, clamping to prevent overflow.
func clampEMU(v float64) int64 {
	if v > float64(maxEMU) {
		return maxEMU
	}
	if v < -float64(maxEMU) {
		return -maxEMU
	}
	return int64(v)
}

// UnitConverter converts between EMU and device pixels. The horizontal and
// vertical resolutions are independent so non-square pixels are supported.
//
// The zero value is not usable; create one with NewUnitConverter.
type UnitConverter struct {
	resX float64
	resY float64
}

// NewUnitConverter returns a converter for the given resolutions in pixels
// per inch.
func NewUnitConverter(resX, resY float64) (*UnitConverter, error) {
	c := &UnitConverter{}
	if err := c.SetResolution(resX, resY); err != nil {
		return nil, err
	}
	return c, nil
}

func checkResolution(axis string, r float64) error {
	if r <= 0 || math.IsNaN(r) || math.IsInf(r, 0) {
		return fmt.Errorf("%w: %s resolution %v must be a positive finite number", ErrInvalidResolution, axis, r)
	}
	return nil
}

// SetResolution changes both resolutions. The converter is left untouched
// when either value is invalid.
func (c *UnitConverter) SetResolution(resX, resY float64) error {
	if err := checkResolution("horizontal", resX); err != nil {
		return err
	}
	if err := checkResolution("vertical", resY); err != nil {
		return err
	}
	c.resX, c.resY = resX, resY
	return nil
}

// Resolution returns the horizontal and vertical resolutions.
func (c *UnitConverter) Resolution() (x, y float64) { return c.resX, c.resY }

func (c *UnitConverter) ToPixelsX(emu int64) float64 { return toPixels(emu, c.resX) }
func (c *UnitConverter) ToPixelsY(emu int64) float64 { return toPixels(emu, c.resY) }

// ToPixelsXInt converts to whole pixels, truncating toward zero.
func (c *UnitConverter) ToPixelsXInt(emu int64) int64 { return toPixelsInt(emu, c.resX) }

// ToPixelsYInt converts to whole pixels, truncating toward zero.
func (c *UnitConverter) ToPixelsYInt(emu int64) int64 { return toPixelsInt(emu, c.resY) }

// ToEmuX converts pixels to EMU, rounding to the nearest unit.
func (c *UnitConverter) ToEmuX(px float64) int64 { return toEmu(px, c.resX) }

// ToEmuY converts pixels to EMU, rounding to the nearest unit.
func (c *UnitConverter) ToEmuY(px float64) int64 { return toEmu(px, c.resY) }

func toPixels(emu int64, res float64) float64 {
	return float64(emu) * res / emuPerInch
}

// toPixelsInt uses exact integer arithmetic for whole-number resolutions so
// that truncation is never disturbed by floating point error.
func toPixelsInt(emu int64, res float64) int64 {
	if r := int64(res); float64(r) == res && !mulOverflows(emu, r) {
		return emu * r / emuPerInch
	}
	return int64(math.Trunc(toPixels(emu, res)))
}

func toEmu(px float64, res float64) int64 {
	return clampEMU(math.Round(px * emuPerInch / res))
}

func mulOverflows(a, b int64) bool {
	if a == 0 || b == 0 {
		return false
	}
	p := a * b
	return p/b != a
}
