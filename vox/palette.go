package vox

import (
	"fmt"
	"strconv"
)

// PaletteSize is the number of slots in every palette.
const PaletteSize = 256

// Color is an RGBA8 palette colour.
type Color struct {
	R, G, B, A uint8
}

// Hex returns the colour as "#rrggbbaa".
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// Float4 returns the colour normalised to [0,1].
func (c Color) Float4() [4]float32 {
	return [4]float32{float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255, float32(c.A) / 255}
}

// ParseHexColor parses "#rrggbb" or "#rrggbbaa". Six digit colours are opaque.
func ParseHexColor(hex string) (Color, error) {
	if len(hex) == 0 || hex[0] != '#' {
		return Color{}, fmt.Errorf("invalid hex colour %q", hex)
	}
	h := hex[1:]
	if len(h) != 6 && len(h) != 8 {
		return Color{}, fmt.Errorf("invalid hex colour length %q", hex)
	}
	var parts [4]uint8
	parts[3] = 255
	for i := 0; i < len(h)/2; i++ {
		v, err := strconv.ParseUint(h[i*2:i*2+2], 16, 8)
		if err != nil {
			return Color{}, fmt.Errorf("invalid hex colour %q: %w", hex, err)
		}
		parts[i] = uint8(v)
	}
	return Color{parts[0], parts[1], parts[2], parts[3]}, nil
}

// Palette is the 256 slot colour table shared by every model of a document.
// Slot 0 means "no colour" and is never referenced by a voxel.
type Palette [PaletteSize]Color

// At returns the colour stored in slot i.
func (p *Palette) At(i uint8) Color { return p[i] }

// Set replaces slot i.
func (p *Palette) Set(i uint8, c Color) { p[i] = c }

// Entries returns the colours in RGBA chunk order: slot 1 first, slot 0 last.
func (p *Palette) Entries() [PaletteSize]Color {
	var out [PaletteSize]Color
	for i := 0; i < PaletteSize; i++ {
		out[i] = p[(i+1)%PaletteSize]
	}
	return out
}

// PaletteFromEntries is the inverse of Entries.
func PaletteFromEntries(entries []Color) (*Palette, error) {
	if len(entries) != PaletteSize {
		return nil, fmt.Errorf("%w: %d entries, want %d", ErrPalette, len(entries), PaletteSize)
	}
	p := new(Palette)
	for i, c := range entries {
		p[(i+1)%PaletteSize] = c
	}
	return p, nil
}

var cubeLevels = [6]uint8{0xff, 0xcc, 0x99, 0x66, 0x33, 0x00}

var rampLevels = [10]uint8{0xee, 0xdd, 0xbb, 0xaa, 0x88, 0x77, 0x55, 0x44, 0x22, 0x11}

// DefaultPalette returns the palette new documents start with: a transparent slot 0,
// a 6 level colour cube without black in slots 1..215, then red, green, blue and
// grey ramps.
func DefaultPalette() *Palette {
	p := new(Palette)
	i := 1
	for _, r := range cubeLevels {
		for _, g := range cubeLevels {
			for _, b := range cubeLevels {
				if r == 0 && g == 0 && b == 0 {
					continue
				}
				p[i] = Color{r, g, b, 255}
				i++
			}
		}
	}
	for ch := 0; ch < 4; ch++ {
		for _, v := range rampLevels {
			c := Color{A: 255}
			switch ch {
			case 0:
				c.R = v
			case 1:
				c.G = v
			case 2:
				c.B = v
			default:
				c.R, c.G, c.B = v, v, v
			}
			p[i] = c
			i++
		}
	}
	return p
}
