package iobus

import "github.com/rcornwell/ts10/memory"

func newTestStore(size uint32) *memory.LinearStore {
	return memory.NewLinearStore(size, 512)
}
