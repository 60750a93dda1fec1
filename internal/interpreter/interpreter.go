// Package interpreter implements the CHIP-8 fetch, decode and execute logic
// together with the per-cycle timer and input bookkeeping.
package interpreter

import (
	"github.com/retroenv/retrochip8/internal/arch/chip8"
	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrogolib/log"
)

// Interpreter executes CHIP-8 instructions against a machine state.
// It is not safe for concurrent use, the owning goroutine drives all calls.
type Interpreter struct {
	logger *log.Logger
	state  *machine.State
	random RandomSource

	burst int
	trace bool

	cycles uint64
}

// New returns a new interpreter operating on the given state.
// A nil logger disables all logging.
func New(logger *log.Logger, state *machine.State, opts options.Emulator) *Interpreter {
	burst := opts.Burst
	if burst <= 0 {
		burst = options.DefaultBurst
	}

	return &Interpreter{
		logger: logger,
		state:  state,
		random: processRandom(),
		burst:  burst,
		trace:  opts.Trace && logger != nil,
	}
}

// SetRandom replaces the random source used by the random byte instruction.
func (ip *Interpreter) SetRandom(random RandomSource) {
	ip.random = random
}

// State returns the machine state the interpreter operates on.
func (ip *Interpreter) State() *machine.State {
	return ip.state
}

// Burst returns the number of instructions executed per cycle.
func (ip *Interpreter) Burst() int {
	return ip.burst
}

// Cycles returns the number of cycles executed so far.
func (ip *Interpreter) Cycles() uint64 {
	return ip.cycles
}

// Cycle executes one burst of instructions, decrements the timers and
// stores the keypad state for the key release detection of the next cycle.
// It returns whether the framebuffer changed during the cycle.
func (ip *Interpreter) Cycle() bool {
	s := ip.state
	s.DrawFlag = false
	s.SoundFlag = false

	for range ip.burst {
		ip.Step()
	}

	if s.DelayTimer > 0 {
		s.DelayTimer--
	}
	if s.SoundTimer > 0 {
		s.SoundFlag = true
		s.SoundTimer--
	}

	s.StoreKeypad()
	ip.cycles++
	return s.DrawFlag
}

// Step fetches, decodes and executes a single instruction.
func (ip *Interpreter) Step() {
	s := ip.state

	// the previous opcode stays in place when the program counter left memory
	pc := int(s.PC)
	if machine.Addressable(pc) && machine.Addressable(pc+1) {
		s.Opcode = uint16(s.Memory[pc])<<8 | uint16(s.Memory[pc+1])
	} else if ip.logger != nil {
		ip.logger.Warn("Program counter outside of memory, repeating previous opcode",
			log.Hex("pc", s.PC),
			log.Hex("opcode", s.Opcode))
	}

	opcode := s.Opcode
	if ip.trace {
		ip.logger.Debug("Executing",
			log.Hex("address", s.PC),
			log.Hex("opcode", opcode),
			log.String("instruction", chip8.Format(opcode)))
	}

	s.PC += 2
	ip.execute(opcode)
}

func (ip *Interpreter) execute(opcode uint16) {
	s := ip.state
	x := uint8(opcode>>8) & 0xF
	y := uint8(opcode>>4) & 0xF
	nn := uint8(opcode)
	nnn := opcode & 0xFFF

	switch opcode & 0xF000 {
	case 0x0000:
		ip.executeSystem(nn)

	case 0x1000:
		s.PC = nnn

	case 0x2000:
		ip.call(nnn)

	case 0x3000:
		if s.V[x] == nn {
			s.PC += 2
		}

	case 0x4000:
		if s.V[x] != nn {
			s.PC += 2
		}

	case 0x5000:
		if s.V[x] == s.V[y] {
			s.PC += 2
		}

	case 0x6000:
		s.V[x] = nn

	case 0x7000:
		s.V[x] += nn

	case 0x8000:
		ip.executeArithmetic(x, y, uint8(opcode)&0xF)

	case 0x9000:
		if s.V[x] != s.V[y] {
			s.PC += 2
		}

	case 0xA000:
		s.I = nnn

	case 0xB000:
		s.PC = uint16(s.V[0]) + nnn

	case 0xC000:
		s.V[x] = ip.random.Byte() & nn

	case 0xD000:
		ip.draw(x, y, int(opcode&0xF))

	case 0xE000:
		ip.executeKey(x, nn)

	case 0xF000:
		ip.executeMisc(x, nn)
	}
}

// executeSystem handles the 0nnn instruction class. Machine code routines
// other than clear screen and return are ignored.
func (ip *Interpreter) executeSystem(nn uint8) {
	s := ip.state
	switch nn {
	case 0xE0:
		s.Graphics = machine.Frame{}
		s.DrawFlag = true

	case 0xEE:
		ip.ret()
	}
}

func (ip *Interpreter) call(address uint16) {
	s := ip.state
	s.SP = (s.SP + 1) & (machine.StackSize - 1)
	if s.SP == 0 && ip.logger != nil {
		ip.logger.Warn("Call stack overflow, stack pointer wrapped",
			log.Hex("pc", s.PC-2),
			log.Hex("target", address))
	}
	s.Stack[s.SP] = s.PC
	s.PC = address
}

func (ip *Interpreter) ret() {
	s := ip.state
	s.PC = s.Stack[s.SP]
	if s.SP == 0 && ip.logger != nil {
		ip.logger.Warn("Call stack underflow, stack pointer wrapped",
			log.Hex("return_address", s.PC))
	}
	s.SP = (s.SP - 1) & (machine.StackSize - 1)
}

// executeArithmetic handles the 8xyn register instructions. Flags are
// always written last so that VF used as an operand yields the flag.
func (ip *Interpreter) executeArithmetic(x, y, n uint8) {
	s := ip.state
	var flag uint8

	switch n {
	case 0x0:
		s.V[x] = s.V[y]

	case 0x1:
		s.V[x] |= s.V[y]
		s.V[machine.FlagRegister] = 0

	case 0x2:
		s.V[x] &= s.V[y]
		s.V[machine.FlagRegister] = 0

	case 0x3:
		s.V[x] ^= s.V[y]
		s.V[machine.FlagRegister] = 0

	case 0x4:
		if uint16(s.V[x])+uint16(s.V[y]) > 0xFF {
			flag = 1
		}
		s.V[x] += s.V[y]
		s.V[machine.FlagRegister] = flag

	case 0x5:
		if s.V[x] >= s.V[y] {
			flag = 1
		}
		s.V[x] -= s.V[y]
		s.V[machine.FlagRegister] = flag

	case 0x6:
		s.V[x] = s.V[y]
		flag = s.V[x] & 1
		s.V[x] >>= 1
		s.V[machine.FlagRegister] = flag

	case 0x7:
		if s.V[y] >= s.V[x] {
			flag = 1
		}
		s.V[x] = s.V[y] - s.V[x]
		s.V[machine.FlagRegister] = flag

	case 0xE:
		s.V[x] = s.V[y]
		flag = s.V[x] >> 7
		s.V[x] <<= 1
		s.V[machine.FlagRegister] = flag
	}
}

// draw XORs an 8 pixel wide sprite of the given height from memory at I
// onto the framebuffer. The sprite is clipped at the display edges.
// Sprite rows that can not be read from memory repeat the previous row.
func (ip *Interpreter) draw(x, y uint8, height int) {
	s := ip.state
	originX := int(s.V[x] % machine.DisplayWidth)
	originY := int(s.V[y] % machine.DisplayHeight)

	s.V[machine.FlagRegister] = 0

	var row byte
	for line := range height {
		py := originY + line
		if py >= machine.DisplayHeight {
			break
		}

		if b, ok := s.Read(int(s.I) + line); ok {
			row = b
		}

		for column := range 8 {
			px := originX + column
			if px >= machine.DisplayWidth {
				break
			}
			if row&(0x80>>column) == 0 {
				continue
			}

			index := py*machine.DisplayWidth + px
			if s.Graphics[index] == 1 {
				s.V[machine.FlagRegister] = 1
			}
			s.Graphics[index] ^= 1
		}
	}

	s.DrawFlag = true
}

func (ip *Interpreter) executeKey(x, nn uint8) {
	s := ip.state
	key := s.V[x] & 0xF

	switch nn {
	case 0x9E:
		if s.Keypad[key] != 0 {
			s.PC += 2
		}

	case 0xA1:
		if s.Keypad[key] == 0 {
			s.PC += 2
		}
	}
}

func (ip *Interpreter) executeMisc(x, nn uint8) {
	s := ip.state

	switch nn {
	case 0x07:
		s.V[x] = s.DelayTimer

	case 0x0A:
		ip.waitKeyRelease(x)

	case 0x15:
		s.DelayTimer = s.V[x]

	case 0x18:
		s.SoundTimer = s.V[x]

	case 0x1E:
		s.I += uint16(s.V[x])

	case 0x29:
		s.I = uint16(s.V[x]&0xF) * machine.FontGlyphSize

	case 0x33:
		value := s.V[x]
		address := int(s.I)
		s.Write(address, value/100)
		s.Write(address+1, (value/10)%10)
		s.Write(address+2, value%10)

	case 0x55:
		address := int(s.I)
		for i := 0; i <= int(x); i++ {
			s.Write(address+i, s.V[i])
		}
		s.I += uint16(x) + 1

	case 0x65:
		address := int(s.I)
		for i := 0; i <= int(x); i++ {
			value, _ := s.Read(address + i)
			s.V[i] = value
		}
		s.I += uint16(x) + 1
	}
}

// waitKeyRelease stores the first key that was released since the previous
// cycle in V[x]. Without a release the instruction is repeated.
func (ip *Interpreter) waitKeyRelease(x uint8) {
	s := ip.state
	for key := range machine.KeyCount {
		if s.PreviousKeypad[key] == 1 && s.Keypad[key] == 0 {
			s.V[x] = uint8(key)
			return
		}
	}
	s.PC -= 2
}
