// Package chip8 provides CHIP-8 instruction decoding and formatting.
//
// # Instruction Set
//
// CHIP-8 has a simple instruction set with 35 opcodes:
//   - All instructions are 2 bytes (16 bits), stored big-endian
//   - Instructions use direct addressing with 12-bit addresses
//   - 16 general-purpose 8-bit registers (V0-VF)
//   - Special-purpose registers: I (16-bit), PC, SP
//
// Opcodes are matched against the mask/value table of the retrogolib
// CHIP-8 CPU definition, selected by the high nibble of the opcode.
//
// # Usage Example
//
//	text := chip8.Format(0xA234) // "ld I, $234"
//
//	// print a listing of a program image loaded at 0x200
//	err := chip8.List(os.Stdout, image, chip8.ProgramStart)
//
// # Listing Format
//
// Each listed line contains the address, the raw opcode bytes and the
// formatted instruction. Words that do not decode to an instruction,
// like sprite data, are listed as .word directives.
package chip8
