/*
 * TS10 - Boot device loader.
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package boot loads a boot device's first blocks into physical memory
// and resolves the entry point execution should resume at (§6 Boot
// contract, SUPPLEMENTED FEATURES). Grounded on
// _examples/original_source/pdp10/ks10_fe.c's ks10_BootDisk/
// ks10_BootTape: a disk boot reads the HOM block, pulls the pre-boot
// loader's starting block number out of the FE_BT_8080 field pair, and
// reads that loader in; a tape boot reads 36-bit words packed 5 bytes
// apiece ("core dump" format) directly off the front of the tape image.
package boot

import (
	"fmt"
	"os"
)

// blockSize matches ks10_fe.c's page-structured disk images: 128
// 36-bit words per block, stored here as 128 uint64 words (5 bytes on
// the wire become one packed 36-bit word once unpacked).
const blockSize = 128

// feBT8080 is the home block's word offset (in 36-bit words) of the
// pre-boot loader's starting disk block number, ks10_fe.c's FE_BT_8080.
const feBT8080 = 0101

// defaultDiskLoadAddr is where the pre-boot loader lands in memory,
// matching ks10_BootDisk's literal destination address 01000.
const defaultDiskLoadAddr = 01000

// Store is the subset of memory.Store boot needs: a flat, word-
// addressed destination to deposit the loaded blocks into.
type Store interface {
	Write(addr uint32, value uint64) error
}

// DiskImage is a fixed-block-size random-access boot volume, backed by
// a flat file of packed-36-bit-word blocks (§6).
type DiskImage struct {
	f *os.File
}

func OpenDisk(path string) (*DiskImage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &DiskImage{f: f}, nil
}

// ReadBlock reads one blockSize-word block, unpacking each 36-bit word
// from 5 bytes on disk (big-endian, top 4 bits of the first byte
// unused), matching ks10_fe.c's on-disk word packing.
func (d *DiskImage) ReadBlock(block int) ([]uint64, error) {
	buf := make([]byte, blockSize*5)
	if _, err := d.f.ReadAt(buf, int64(block)*int64(len(buf))); err != nil {
		return nil, fmt.Errorf("boot: read block %d: %w", block, err)
	}
	words := make([]uint64, blockSize)
	for i := range words {
		words[i] = unpack36(buf[i*5 : i*5+5])
	}
	return words, nil
}

// unpack36 reconstructs one 36-bit word from 5 packed bytes, matching
// the classic DEC "core dump" tape/disk format: the word's 36 bits are
// the low 36 bits of a 40-bit big-endian field.
func unpack36(b []byte) uint64 {
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v & 0o777777_777777
}

// LoadDisk implements ks10_BootDisk: read the home block, find the
// pre-boot loader's starting block via FE_BT_8080, load four blocks
// starting there at defaultDiskLoadAddr, and return that address as
// the entry point.
func LoadDisk(mem Store, disk *DiskImage) (entry uint32, err error) {
	home, err := disk.ReadBlock(0)
	if err != nil {
		return 0, err
	}
	loaderBlock := home[feBT8080]
	if loaderBlock == 0 {
		return 0, fmt.Errorf("boot: disk is not bootable (no pre-boot loader block)")
	}

	addr := uint32(defaultDiskLoadAddr)
	for i := 0; i < 4; i++ {
		blk, err := disk.ReadBlock(int(loaderBlock) + i)
		if err != nil {
			return 0, err
		}
		for _, w := range blk {
			if err := mem.Write(addr, w); err != nil {
				return 0, err
			}
			addr++
		}
	}
	return defaultDiskLoadAddr, nil
}

// LoadTape implements ks10_BootTape: read 36-bit words packed 5 bytes
// apiece straight off the front of a tape image into memory starting at
// loadAddr, stopping at EOF, and return loadAddr as the entry point
// (tape boot images start execution at their first loaded word, unlike
// a disk boot's fixed pre-boot loader address).
func LoadTape(mem Store, path string, loadAddr uint32) (entry uint32, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("boot: read tape image: %w", err)
	}

	addr := loadAddr
	for off := 0; off+5 <= len(data); off += 5 {
		if err := mem.Write(addr, unpack36(data[off:off+5])); err != nil {
			return 0, err
		}
		addr++
	}
	return loadAddr, nil
}
