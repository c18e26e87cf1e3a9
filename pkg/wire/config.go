package wire

import "encoding/binary"

// ConfigSize is the encoded size of one Config in bytes.
const ConfigSize = 12

// Config is the construction-time terminal configuration as it crosses the
// boundary: three u32 fields, little-endian.
//
// ScrollbackLimit is a line count, 0 meaning unbounded. FgColor and BgColor
// are 24-bit RGB values packed into the low bits of a u32, 0 meaning "use
// the terminal default".
type Config struct {
	ScrollbackLimit uint32
	FgColor         uint32
	BgColor         uint32
}

// Encode writes the config into dst and returns ConfigSize.
// dst must be at least ConfigSize bytes long.
func (c Config) Encode(dst []byte) int {
	binary.LittleEndian.PutUint32(dst[0:4], c.ScrollbackLimit)
	binary.LittleEndian.PutUint32(dst[4:8], c.FgColor)
	binary.LittleEndian.PutUint32(dst[8:12], c.BgColor)
	return ConfigSize
}

// DecodeConfig reads one config record from src. Returns false if src is
// shorter than ConfigSize.
func DecodeConfig(src []byte) (Config, bool) {
	if len(src) < ConfigSize {
		return Config{}, false
	}
	return Config{
		ScrollbackLimit: binary.LittleEndian.Uint32(src[0:4]),
		FgColor:         binary.LittleEndian.Uint32(src[4:8]),
		BgColor:         binary.LittleEndian.Uint32(src[8:12]),
	}, true
}

// PackRGB packs an RGB triple into the 24-bit color encoding used by Config.
func PackRGB(r, g, b uint8) uint32 {
	return uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}

// UnpackRGB splits a packed 24-bit color into its RGB channels.
func UnpackRGB(v uint32) (r, g, b uint8) {
	return uint8(v >> 16), uint8(v >> 8), uint8(v)
}
