package main

import (
	"fmt"
	"os"

	"github.com/kbconv/converter/config"
)

// fileFlash backs config.Flash with two fixed-offset regions of a single
// regular file, standing in for the two 2048-byte flash sectors real
// firmware would program directly (§6: "Two 2048-byte copies at offsets
// S-4096 and S-2048 of flash"). Real on-chip flash programming is
// board-specific and out of scope (§1); this is the simplest concrete
// Flash a host-run binary can offer for the same dual-copy/CRC/
// wear-leveling logic to exercise against.
type fileFlash struct {
	f *os.File
}

func newFileFlash(path string) (*fileFlash, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, err
	}
	if err := f.Truncate(2 * config.CopySize); err != nil {
		f.Close()
		return nil, err
	}
	return &fileFlash{f: f}, nil
}

func (ff *fileFlash) offset(idx int) (int64, error) {
	if idx != 0 && idx != 1 {
		return 0, fmt.Errorf("flash: invalid copy index %d", idx)
	}
	return int64(idx * config.CopySize), nil
}

func (ff *fileFlash) ReadCopy(idx int) ([]byte, error) {
	off, err := ff.offset(idx)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, config.CopySize)
	if _, err := ff.f.ReadAt(buf, off); err != nil {
		return nil, err
	}
	return buf, nil
}

func (ff *fileFlash) WriteCopy(idx int, data []byte) error {
	off, err := ff.offset(idx)
	if err != nil {
		return err
	}
	if len(data) != config.CopySize {
		return fmt.Errorf("flash: write must be exactly %d bytes, got %d", config.CopySize, len(data))
	}
	if _, err := ff.f.WriteAt(data, off); err != nil {
		return err
	}
	return ff.f.Sync()
}
