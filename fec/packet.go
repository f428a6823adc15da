package fec

import "encoding/binary"

// PacketFormat is the capability an SSDV packet layout exposes to the
// encoder and decoder (spec §4.4). The core never interprets packet bytes
// except through this interface: it knows how to find the payload region,
// the packet-ID field, and which byte ranges are "image-scoped" (must agree
// across every systematic packet of one image), but has no opinion on sync
// bytes, callsigns, or any other format-specific plumbing.
//
// A format is a stateless, typically zero-size, value — SSDV packets don't
// carry per-format configuration, so there is nothing to construct. The core
// accepts a single PacketFormat per Encode/Decode call; there is no
// dynamic format detection.
type PacketFormat interface {
	// PacketLen is the total number of bytes in one packet of this format.
	PacketLen() int

	// PayloadRange returns the offset and length, in bytes, of the region
	// interpreted as GF(2^16) field symbols. The length is always even.
	PayloadRange() (offset, length int)

	// IDOffset returns the byte offset of the big-endian 16-bit packet-ID
	// field.
	IDOffset() int

	// ImageScopeRanges returns byte ranges that must agree across every
	// systematic packet of one image (the image ID and, on the standard
	// format, the callsign; dimensions and content flags are handled through
	// their own accessors). The encoder fills these from systematic slot 0;
	// the decoder copies them from a selected packet.
	ImageScopeRanges() [][2]int

	// ComputeCRC computes the format's CRC-32 over the bytes it considers
	// authenticated. packet must be PacketLen() bytes long; the trailing 4
	// CRC bytes are ignored by the computation itself.
	ComputeCRC(packet []byte) uint32

	// VerifyCRC reports whether packet's trailing CRC-32 field matches
	// ComputeCRC.
	VerifyCRC(packet []byte) bool

	// SetCRC writes crc to packet's trailing CRC-32 field.
	SetCRC(packet []byte, crc uint32)

	// PacketID and SetPacketID get/set the 16-bit packet-ID field.
	PacketID(packet []byte) uint16
	SetPacketID(packet []byte, id uint16)

	// IsFECPacket and SetFECPacket get/set the flag distinguishing a FEC
	// packet from a systematic one.
	IsFECPacket(packet []byte) bool
	SetFECPacket(packet []byte, fec bool)

	// IsEOI and SetEOI get/set the end-of-image flag, which is set on
	// exactly the last systematic packet (id == k-1) of an image.
	IsEOI(packet []byte) bool
	SetEOI(packet []byte, eoi bool)

	// ImageID and SetImageID get/set the 8-bit image identifier.
	ImageID(packet []byte) uint8
	SetImageID(packet []byte, id uint8)

	// Dimensions returns the image width/height carried by a systematic
	// packet. ok is false when called on a FEC packet, which does not carry
	// dimensions.
	Dimensions(packet []byte) (width, height uint8, ok bool)
	SetDimensions(packet []byte, width, height uint8)

	// NumSystematic returns the number of systematic packets in the image,
	// as carried by a FEC packet. ok is false when called on a systematic
	// packet, which does not carry this field.
	NumSystematic(packet []byte) (k uint16, ok bool)
	SetNumSystematic(packet []byte, k uint16)

	// ContentFlags returns the flags byte with the EOI and FEC-packet bits
	// masked out, i.e. the part of the flags byte that is image-scoped.
	ContentFlags(packet []byte) uint8
	SetContentFlags(packet []byte, flags uint8)

	// SetFixedFields writes any constant, format-identifying bytes (e.g. a
	// sync byte or packet-type byte) that do not vary with content.
	SetFixedFields(packet []byte)
}

// Bit positions of the EOI and FEC-packet flags within the flags byte,
// shared by both shipped formats.
const (
	flagEOI = 0x04
	flagFEC = 0x40
)

func readUint32(b []byte) uint32  { return binary.BigEndian.Uint32(b[:4]) }
func writeUint32(b []byte, v uint32) { binary.BigEndian.PutUint32(b[:4], v) }

// headerLayout is the byte-offset table shared by the standard and
// Longjiang-2 formats. They differ only in where the header starts (the
// standard format has a sync byte, packet-type byte, and callsign ahead of
// it) and in CRC computation; the field order from image ID onward is the
// same in both, which is why both formats embed this helper instead of
// duplicating every accessor.
type headerLayout struct {
	packetLen      int
	imageIDOffset  int
	idOffset       int
	dimsOffset     int // 2 bytes: width,height (systematic) or numSystematic (FEC), big-endian in the latter case
	flagsOffset    int
	payloadOffset  int
	payloadLen     int
}

func (h headerLayout) PacketLen() int { return h.packetLen }

func (h headerLayout) PayloadRange() (offset, length int) {
	return h.payloadOffset, h.payloadLen
}

func (h headerLayout) IDOffset() int { return h.idOffset }

func (h headerLayout) PacketID(packet []byte) uint16 {
	return binary.BigEndian.Uint16(packet[h.idOffset : h.idOffset+2])
}

func (h headerLayout) SetPacketID(packet []byte, id uint16) {
	binary.BigEndian.PutUint16(packet[h.idOffset:h.idOffset+2], id)
}

func (h headerLayout) IsFECPacket(packet []byte) bool {
	return packet[h.flagsOffset]&flagFEC != 0
}

func (h headerLayout) SetFECPacket(packet []byte, fec bool) {
	if fec {
		packet[h.flagsOffset] |= flagFEC
	} else {
		packet[h.flagsOffset] &^= flagFEC
	}
}

func (h headerLayout) IsEOI(packet []byte) bool {
	return packet[h.flagsOffset]&flagEOI != 0
}

func (h headerLayout) SetEOI(packet []byte, eoi bool) {
	if eoi {
		packet[h.flagsOffset] |= flagEOI
	} else {
		packet[h.flagsOffset] &^= flagEOI
	}
}

func (h headerLayout) ImageID(packet []byte) uint8 {
	return packet[h.imageIDOffset]
}

func (h headerLayout) SetImageID(packet []byte, id uint8) {
	packet[h.imageIDOffset] = id
}

func (h headerLayout) Dimensions(packet []byte) (width, height uint8, ok bool) {
	if h.IsFECPacket(packet) {
		return 0, 0, false
	}
	return packet[h.dimsOffset], packet[h.dimsOffset+1], true
}

func (h headerLayout) SetDimensions(packet []byte, width, height uint8) {
	packet[h.dimsOffset] = width
	packet[h.dimsOffset+1] = height
}

func (h headerLayout) NumSystematic(packet []byte) (k uint16, ok bool) {
	if !h.IsFECPacket(packet) {
		return 0, false
	}
	return binary.BigEndian.Uint16(packet[h.dimsOffset : h.dimsOffset+2]), true
}

func (h headerLayout) SetNumSystematic(packet []byte, k uint16) {
	binary.BigEndian.PutUint16(packet[h.dimsOffset:h.dimsOffset+2], k)
}

func (h headerLayout) ContentFlags(packet []byte) uint8 {
	return packet[h.flagsOffset] &^ (flagEOI | flagFEC)
}

func (h headerLayout) SetContentFlags(packet []byte, flags uint8) {
	packet[h.flagsOffset] = (packet[h.flagsOffset] & (flagEOI | flagFEC)) | (flags &^ (flagEOI | flagFEC))
}

// imageScopeRanges returns the byte ranges that are always safe to copy
// verbatim across every packet of one image regardless of whether the
// packet is systematic or FEC: just the image ID. Width/height,
// numSystematic, and the flags byte's content bits carry different meaning
// (or live at shared offsets with different interpretation) between
// systematic and FEC packets, so encode.go and decode.go reconcile those
// through the dedicated accessors above instead of a raw byte-range copy.
func (h headerLayout) imageScopeRanges() [][2]int {
	return [][2]int{
		{h.imageIDOffset, 1},
	}
}
