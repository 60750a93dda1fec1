package chip8

import (
	"fmt"
	"io"
)

// List writes a linear disassembly listing of the program image to the
// writer, assuming the image is loaded at the given start address.
// A trailing odd byte is listed as a data byte.
func List(w io.Writer, image []byte, start uint16) error {
	for offset := 0; offset < len(image); offset += opcodeSize {
		address := int(start) + offset
		if address > MaxAddress {
			return fmt.Errorf("image exceeds address space at offset %d", offset)
		}

		if offset+1 >= len(image) {
			if _, err := fmt.Fprintf(w, "%03X  %02X     .byte $%02X\n", address, image[offset], image[offset]); err != nil {
				return fmt.Errorf("writing listing: %w", err)
			}
			break
		}

		opcode := uint16(image[offset])<<8 | uint16(image[offset+1])
		line := fmt.Sprintf("%03X  %02X %02X  %s", address, image[offset], image[offset+1], Format(opcode))
		if comment := controlFlowComment(opcode, uint16(address)); comment != "" {
			line += "  ; " + comment
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("writing listing: %w", err)
		}
	}
	return nil
}

// controlFlowComment describes how the instruction changes the program flow.
func controlFlowComment(opcode, address uint16) string {
	switch {
	case IsSkip(opcode):
		return "skips next"
	case IsCall(opcode):
		return "enters subroutine"
	case IsReturn(opcode):
		return "leaves subroutine"
	case IsJump(opcode) && opcode&0xF000 == 0x1000 && opcode&0x0FFF == address:
		return "endless loop"
	}
	return ""
}
