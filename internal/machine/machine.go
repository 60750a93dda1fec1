// Package machine contains the complete mutable state of a CHIP-8 virtual machine.
package machine

// CHIP-8 memory and display layout constants.
//
// CHIP-8 memory map (4KB total):
//
//	0x000-0x04F: hexadecimal font glyphs 0-F (5 bytes each)
//	0x050-0x1FF: unused interpreter area
//	0x200-0xFFF: program image (3584 bytes)
const (
	// MemorySize is the size of the addressable memory in bytes.
	MemorySize = 0x1000

	// ProgramStart is the memory address where programs are loaded and execution begins.
	ProgramStart = 0x200

	// MaxProgramSize is the largest program image that fits into memory.
	MaxProgramSize = MemorySize - ProgramStart

	// RegisterCount is the number of general purpose V registers.
	RegisterCount = 16

	// FlagRegister is the index of the V register used for carry, borrow and collision flags.
	FlagRegister = 0xF

	// StackSize is the number of return address slots.
	StackSize = 16

	// KeyCount is the number of logical keys of the keypad.
	KeyCount = 16

	// DisplayWidth is the width of the framebuffer in pixels.
	DisplayWidth = 64

	// DisplayHeight is the height of the framebuffer in pixels.
	DisplayHeight = 32

	// FontGlyphSize is the number of bytes per font glyph.
	FontGlyphSize = 5
)

// Font contains the 16 hexadecimal glyphs that are copied to the start of memory.
var Font = [16 * FontGlyphSize]byte{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

// Frame is a snapshot of the 64x32 framebuffer, row-major, one cell per pixel.
type Frame [DisplayWidth * DisplayHeight]uint8

// Pixel returns whether the pixel at the given coordinates is set.
// Coordinates outside of the display return false.
func (f *Frame) Pixel(x, y int) bool {
	if x < 0 || y < 0 || x >= DisplayWidth || y >= DisplayHeight {
		return false
	}
	return f[y*DisplayWidth+x] != 0
}

// State is the complete state of a CHIP-8 virtual machine.
// It is owned exclusively by a single interpreter and is not safe for concurrent use.
type State struct {
	Memory [MemorySize]byte
	V      [RegisterCount]uint8
	I      uint16 // index register, not masked to 12 bits
	PC     uint16
	Stack  [StackSize]uint16
	SP     uint8 // index of the topmost occupied stack slot

	Graphics Frame

	Keypad         [KeyCount]uint8
	PreviousKeypad [KeyCount]uint8

	DelayTimer uint8
	SoundTimer uint8

	DrawFlag  bool // framebuffer changed during the current cycle
	SoundFlag bool // sound timer was active during the current cycle

	Opcode uint16 // most recently fetched instruction word
}

// New returns a zeroed machine state with the font loaded and the
// program counter set to the program start address.
func New() *State {
	s := &State{
		PC: ProgramStart,
	}
	copy(s.Memory[:], Font[:])
	return s
}

// LoadProgram copies the program image into memory starting at the
// program start address. Bytes that do not fit into memory are dropped.
// It returns the number of bytes copied.
func (s *State) LoadProgram(data []byte) int {
	return copy(s.Memory[ProgramStart:], data)
}

// KeyDown marks the logical key as pressed. Keys outside 0-F are ignored.
func (s *State) KeyDown(key uint8) {
	if key < KeyCount {
		s.Keypad[key] = 1
	}
}

// KeyUp marks the logical key as released. Keys outside 0-F are ignored.
func (s *State) KeyUp(key uint8) {
	if key < KeyCount {
		s.Keypad[key] = 0
	}
}

// StoreKeypad snapshots the current keypad state as the previous state
// used for key release edge detection.
func (s *State) StoreKeypad() {
	s.PreviousKeypad = s.Keypad
}

// Framebuffer returns a copy of the current framebuffer.
func (s *State) Framebuffer() Frame {
	return s.Graphics
}

// Read returns the memory byte at the given address and whether the address
// is addressable. Reads outside of the addressable memory return 0.
func (s *State) Read(address int) (byte, bool) {
	if !Addressable(address) {
		return 0, false
	}
	return s.Memory[address], true
}

// Write stores a byte at the given address and returns whether the write
// happened. Writes outside of the addressable memory are dropped.
func (s *State) Write(address int, value byte) bool {
	if !Addressable(address) {
		return false
	}
	s.Memory[address] = value
	return true
}

// Addressable returns whether the address is a valid 12-bit memory address.
func Addressable(address int) bool {
	return address >= 0 && address>>12 == 0
}
