package wire

// Binary records shared between the terminal boundary and its callers.
// Every record is little-endian and has a fixed size on all platforms, so
// foreign callers can decode it straight out of shared memory.

import "encoding/binary"

// CellSize is the encoded size of one Cell in bytes.
const CellSize = 16

// Style flag bits carried in the Flags byte of a Cell.
const (
	FlagBold uint8 = 1 << iota
	FlagItalic
	FlagUnderline // any underline kind, the kind itself is not preserved
	FlagStrikethrough
	FlagInverse
	FlagInvisible
	FlagBlink
	FlagFaint
)

// Width classes carried in the Width byte of a Cell.
const (
	WidthZero   uint8 = 0 // combining or zero-width
	WidthNormal uint8 = 1
	WidthWide   uint8 = 2 // occupies two columns
)

// Cell is one screen cell as it crosses the boundary: a Unicode codepoint,
// fully resolved foreground/background RGB, packed style flags, and a width
// class. A zero Codepoint means the cell is empty.
//
// Encoded layout (16 bytes, little-endian):
//
//	offset 0  u32 codepoint
//	offset 4  u8  fg R, G, B
//	offset 7  u8  bg R, G, B
//	offset 10 u8  flags
//	offset 11 u8  width
//	offset 12 4 reserved bytes, always zero
type Cell struct {
	Codepoint uint32
	FgR       uint8
	FgG       uint8
	FgB       uint8
	BgR       uint8
	BgG       uint8
	BgB       uint8
	Flags     uint8
	Width     uint8
}

// Encode writes the cell into dst and returns CellSize.
// dst must be at least CellSize bytes long.
func (c Cell) Encode(dst []byte) int {
	binary.LittleEndian.PutUint32(dst[0:4], c.Codepoint)
	dst[4] = c.FgR
	dst[5] = c.FgG
	dst[6] = c.FgB
	dst[7] = c.BgR
	dst[8] = c.BgG
	dst[9] = c.BgB
	dst[10] = c.Flags
	dst[11] = c.Width
	binary.LittleEndian.PutUint32(dst[12:16], 0)
	return CellSize
}

// DecodeCell reads one cell from src. Returns false if src is shorter than
// CellSize.
func DecodeCell(src []byte) (Cell, bool) {
	if len(src) < CellSize {
		return Cell{}, false
	}
	return Cell{
		Codepoint: binary.LittleEndian.Uint32(src[0:4]),
		FgR:       src[4],
		FgG:       src[5],
		FgB:       src[6],
		BgR:       src[7],
		BgG:       src[8],
		BgB:       src[9],
		Flags:     src[10],
		Width:     src[11],
	}, true
}
