package fec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBlankPacket(t *testing.T, format PacketFormat) []byte {
	t.Helper()
	return make([]byte, format.PacketLen())
}

func TestStandardFormatRoundtripsHeaderFields(t *testing.T) {
	pkt := newBlankPacket(t, StandardFormat)
	StandardFormat.SetImageID(pkt, 7)
	StandardFormat.SetPacketID(pkt, 12345)
	StandardFormat.SetDimensions(pkt, 160, 120)
	StandardFormat.SetFECPacket(pkt, false)
	StandardFormat.SetEOI(pkt, true)
	StandardFormat.SetFixedFields(pkt)
	StandardFormat.SetCRC(pkt, StandardFormat.ComputeCRC(pkt))

	assert.Equal(t, uint8(7), StandardFormat.ImageID(pkt))
	assert.Equal(t, uint16(12345), StandardFormat.PacketID(pkt))
	w, h, ok := StandardFormat.Dimensions(pkt)
	require.True(t, ok)
	assert.Equal(t, uint8(160), w)
	assert.Equal(t, uint8(120), h)
	assert.False(t, StandardFormat.IsFECPacket(pkt))
	assert.True(t, StandardFormat.IsEOI(pkt))
	assert.True(t, StandardFormat.VerifyCRC(pkt))
	assert.Equal(t, byte(0x55), pkt[standardSyncOffset])
	assert.Equal(t, byte(0x67), pkt[standardTypeOffset])
}

func TestStandardFormatDimensionsHiddenOnFECPacket(t *testing.T) {
	pkt := newBlankPacket(t, StandardFormat)
	StandardFormat.SetFECPacket(pkt, true)
	StandardFormat.SetNumSystematic(pkt, 230)
	StandardFormat.SetFixedFields(pkt)
	_, _, ok := StandardFormat.Dimensions(pkt)
	assert.False(t, ok)
	nsys, ok := StandardFormat.NumSystematic(pkt)
	require.True(t, ok)
	assert.Equal(t, uint16(230), nsys)
	assert.Equal(t, byte(0x67), pkt[standardTypeOffset])
}

func TestLongjiang2FormatRoundtripsHeaderFields(t *testing.T) {
	pkt := newBlankPacket(t, Longjiang2Format)
	Longjiang2Format.SetImageID(pkt, 3)
	Longjiang2Format.SetPacketID(pkt, 217)
	Longjiang2Format.SetDimensions(pkt, 80, 60)
	Longjiang2Format.SetFECPacket(pkt, false)
	Longjiang2Format.SetFixedFields(pkt)
	Longjiang2Format.SetCRC(pkt, Longjiang2Format.ComputeCRC(pkt))

	assert.Equal(t, uint8(3), Longjiang2Format.ImageID(pkt))
	assert.Equal(t, uint16(217), Longjiang2Format.PacketID(pkt))
	w, h, ok := Longjiang2Format.Dimensions(pkt)
	require.True(t, ok)
	assert.Equal(t, uint8(80), w)
	assert.Equal(t, uint8(60), h)
	assert.False(t, Longjiang2Format.IsFECPacket(pkt))
	assert.True(t, Longjiang2Format.VerifyCRC(pkt))
	pkt[0] ^= 0xff
	assert.False(t, Longjiang2Format.VerifyCRC(pkt))
}

func TestContentFlagsExcludeEOIAndFEC(t *testing.T) {
	pkt := newBlankPacket(t, Longjiang2Format)
	Longjiang2Format.SetContentFlags(pkt, 0x18)
	Longjiang2Format.SetEOI(pkt, true)
	Longjiang2Format.SetFECPacket(pkt, true)
	assert.Equal(t, uint8(0x18), Longjiang2Format.ContentFlags(pkt))
	assert.True(t, Longjiang2Format.IsEOI(pkt))
	assert.True(t, Longjiang2Format.IsFECPacket(pkt))
}
