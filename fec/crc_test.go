package fec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDSLWPCRCDiffersFromStandardCRC(t *testing.T) {
	data := []byte("a Longjiang-2 style packet body of arbitrary content")
	assert.NotEqual(t, computeStandardCRC32(data), computeDSLWPCRC32(data))
}

func TestCRCSensitiveToEveryByte(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	base := computeDSLWPCRC32(data)
	for i := range data {
		mutated := append([]byte(nil), data...)
		mutated[i] ^= 0x01
		assert.NotEqual(t, base, computeDSLWPCRC32(mutated), "flipping byte %d did not change the CRC", i)
	}
}
