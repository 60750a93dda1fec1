// Package loader handles program image loading operations.
package loader

import (
	"errors"
	"fmt"
	"os"

	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrogolib/arch/system/nes/cartridge"
	"github.com/retroenv/retrogolib/log"
)

var (
	// ErrEmptyProgram is returned for program images without any content.
	ErrEmptyProgram = errors.New("program image is empty")
	// ErrProgramTooLarge is returned for program images that do not fit into memory.
	ErrProgramTooLarge = errors.New("program image does not fit into memory")
)

// Loader handles loading program images from disk.
type Loader struct {
	logger *log.Logger
}

// New creates a new program loader.
func New(logger *log.Logger) *Loader {
	return &Loader{
		logger: logger,
	}
}

// Load reads a raw CHIP-8 program image. Images larger than the program
// memory are rejected, unless truncate is set in which case the excess
// bytes are dropped.
func (l *Loader) Load(path string, truncate bool) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("reading file info %s: %w", path, err)
	}
	size := int(info.Size())
	if size == 0 {
		return nil, ErrEmptyProgram
	}

	// CHIP-8 images have no header and are read as raw buffer data
	cart, err := cartridge.LoadBuffer(file)
	if err != nil {
		return nil, fmt.Errorf("loading program image: %w", err)
	}

	image := cart.PRG
	if len(image) > size {
		image = image[:size]
	}

	return l.validate(image, truncate)
}

func (l *Loader) validate(image []byte, truncate bool) ([]byte, error) {
	if len(image) == 0 {
		return nil, ErrEmptyProgram
	}

	if len(image) > machine.MaxProgramSize {
		if !truncate {
			return nil, fmt.Errorf("%w: %d bytes, maximum is %d",
				ErrProgramTooLarge, len(image), machine.MaxProgramSize)
		}

		l.logger.Warn("Program image truncated",
			log.Int("size", len(image)),
			log.Int("max_size", machine.MaxProgramSize))
		image = image[:machine.MaxProgramSize]
	}

	if len(image)%2 != 0 {
		l.logger.Debug("Program image has an odd size", log.Int("size", len(image)))
	}
	return image, nil
}
