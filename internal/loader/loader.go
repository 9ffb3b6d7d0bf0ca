// Package loader handles ROM file loading operations.
package loader

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrogolib/log"
)

// ErrEmptyROM is returned for ROM files without any content.
var ErrEmptyROM = errors.New("rom file is empty")

// Extensions commonly used for CHIP-8 ROM files.
var Extensions = []string{".ch8", ".c8", ".rom"}

// Loader handles loading ROM files from disk.
type Loader struct {
	logger *log.Logger
}

// New creates a new ROM loader.
func New(logger *log.Logger) *Loader {
	return &Loader{
		logger: logger,
	}
}

// Load reads a raw CHIP-8 ROM file. ROM files have no header, the content is
// loaded verbatim at the program start address, so it can not be larger than
// the program space of the machine.
func (l *Loader) Load(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	if !hasROMExtension(path) {
		l.logger.Warn("File extension is not a known CHIP-8 ROM extension",
			log.String("file", path),
			log.String("extensions", strings.Join(Extensions, ", ")))
	}

	data, err := Read(file)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}

	l.logger.Debug("Loaded ROM",
		log.String("file", path),
		log.Int("size", len(data)))
	return data, nil
}

// Read reads a ROM from the reader and validates its size.
func Read(reader io.Reader) ([]byte, error) {
	// read one byte more than allowed to detect oversized files
	data, err := io.ReadAll(io.LimitReader(reader, chip8.MaxROMSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading rom: %w", err)
	}

	switch {
	case len(data) == 0:
		return nil, ErrEmptyROM
	case len(data) > chip8.MaxROMSize:
		return nil, fmt.Errorf("rom exceeds the maximum size of %d bytes: %w",
			chip8.MaxROMSize, &chip8.MemoryFault{
				Region:  chip8.RegionMemory,
				Address: chip8.ProgramStart,
				Length:  len(data),
			})
	}
	return data, nil
}

// hasROMExtension returns whether the file name has a known ROM extension.
func hasROMExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, known := range Extensions {
		if ext == known {
			return true
		}
	}
	return false
}
