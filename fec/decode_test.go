package fec

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// encodeAll returns n packets (systematic ids 0..k-1 followed by FEC ids
// k..n-1) for image, concatenated in a single buffer.
func encodeAll(t *testing.T, format PacketFormat, image []byte, n int) []byte {
	t.Helper()
	L := format.PacketLen()
	buf := make([]byte, n*L)
	for i := 0; i < n; i++ {
		require.NoError(t, Encode(format, image, uint16(i), buf[i*L:(i+1)*L]))
	}
	return buf
}

func TestDecodeSystematicShortCircuit(t *testing.T) {
	format := Longjiang2Format
	k := 9
	image := buildImage(format, k, 10)
	recv := encodeAll(t, format, image, k)

	out := make([]byte, len(image))
	require.NoError(t, Decode(format, recv, out))

	payloadOff, payloadLen := format.PayloadRange()
	for i := 0; i < k; i++ {
		want := image[i*format.PacketLen()+payloadOff : i*format.PacketLen()+payloadOff+payloadLen]
		got := out[i*format.PacketLen()+payloadOff : i*format.PacketLen()+payloadOff+payloadLen]
		assert.Equal(t, want, got)
	}
}

func TestDecodeRoundtripWithErasuresAndReorder(t *testing.T) {
	format := Longjiang2Format
	k := 14
	n := 20
	image := buildImage(format, k, 11)
	full := encodeAll(t, format, image, n)
	L := format.PacketLen()

	rng := rand.New(rand.NewSource(42))
	perm := rng.Perm(n)
	selected := perm[:k]

	recv := make([]byte, k*L)
	for i, idx := range selected {
		copy(recv[i*L:(i+1)*L], full[idx*L:(idx+1)*L])
	}

	out := make([]byte, k*L)
	require.NoError(t, Decode(format, recv, out))

	payloadOff, payloadLen := format.PayloadRange()
	for i := 0; i < k; i++ {
		want := image[i*L+payloadOff : i*L+payloadOff+payloadLen]
		got := out[i*L+payloadOff : i*L+payloadOff+payloadLen]
		assert.Equal(t, want, got, "packet %d payload mismatch after erasure-decode", i)
		assert.True(t, format.VerifyCRC(out[i*L:(i+1)*L]))
		assert.Equal(t, uint16(i), format.PacketID(out[i*L:(i+1)*L]))
	}
}

func TestDecodeDropsDuplicatesRegardlessOfContent(t *testing.T) {
	format := Longjiang2Format
	k := 6
	image := buildImage(format, k, 12)
	full := encodeAll(t, format, image, k+3)
	L := format.PacketLen()

	// Build a recv stream with packet 0 duplicated (second copy corrupted,
	// but with a still-matching ID so it must be dropped, not consulted).
	recv := make([]byte, 0, (k+2)*L)
	recv = append(recv, full[0:L]...)
	dup := append([]byte(nil), full[0:L]...)
	payloadOff, _ := format.PayloadRange()
	dup[payloadOff] ^= 0xff // corrupt payload, keep ID
	format.SetCRC(dup, format.ComputeCRC(dup))
	recv = append(recv, dup...)
	for i := 1; i < k; i++ {
		recv = append(recv, full[i*L:(i+1)*L]...)
	}

	out := make([]byte, k*L)
	require.NoError(t, Decode(format, recv, out))
	payloadOff, payloadLen := format.PayloadRange()
	assert.Equal(t, image[payloadOff:payloadOff+payloadLen], out[payloadOff:payloadOff+payloadLen])
}

func TestDecodeNotEnoughPackets(t *testing.T) {
	format := Longjiang2Format
	k := 5
	image := buildImage(format, k, 13)
	full := encodeAll(t, format, image, k)
	L := format.PacketLen()

	// Only k-1 valid packets supplied; out expects k.
	recv := full[:(k-1)*L]
	out := make([]byte, k*L)
	err := Decode(format, recv, out)
	assert.ErrorIs(t, err, ErrNotEnoughPackets)
}

func TestDecodeSkipsCRCFailures(t *testing.T) {
	format := Longjiang2Format
	k := 5
	image := buildImage(format, k, 14)
	full := encodeAll(t, format, image, k) // no spare FEC packets
	L := format.PacketLen()

	// Corrupt a byte of packet 2 so its CRC no longer verifies, with no
	// replacement available.
	full[2*L] ^= 0xff

	out := make([]byte, k*L)
	err := Decode(format, full, out)
	assert.ErrorIs(t, err, ErrNotEnoughPackets)
}

func TestDecodeHighPacketIDEdgeCase(t *testing.T) {
	format := Longjiang2Format
	k := 4
	image := buildImage(format, k, 15)
	L := format.PacketLen()

	recv := make([]byte, 0, k*L)
	// Systematic packets 1, 2, 3.
	for i := 1; i < k; i++ {
		pkt := make([]byte, L)
		require.NoError(t, Encode(format, image, uint16(i), pkt))
		recv = append(recv, pkt...)
	}
	// One FEC packet at the top of the ID space.
	top := make([]byte, L)
	require.NoError(t, Encode(format, image, 65535, top))
	recv = append(recv, top...)

	out := make([]byte, k*L)
	require.NoError(t, Decode(format, recv, out))

	payloadOff, payloadLen := format.PayloadRange()
	assert.Equal(t, image[payloadOff:payloadOff+payloadLen], out[payloadOff:payloadOff+payloadLen])
}

func TestDecodeRejectsAllFECSelection(t *testing.T) {
	format := Longjiang2Format
	k := 4
	image := buildImage(format, k, 16)
	L := format.PacketLen()

	recv := make([]byte, 0, k*L)
	for i := 0; i < k; i++ {
		pkt := make([]byte, L)
		require.NoError(t, Encode(format, image, uint16(k+i), pkt))
		recv = append(recv, pkt...)
	}

	out := make([]byte, k*L)
	err := Decode(format, recv, out)
	assert.ErrorIs(t, err, ErrMalformedInput)
}
