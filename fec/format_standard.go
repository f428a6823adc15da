package fec

// Byte layout of the standard 256-byte SSDV packet:
//
//	0       sync byte (0x55)
//	1       packet type (0x67, per SetFixedFields)
//	2..6    callsign (4 bytes, base-40 encoded)
//	6       image ID
//	7..9    packet ID (big-endian uint16)
//	9..11   width/height (systematic) or numSystematic (FEC), big-endian
//	11      flags
//	12..252 payload (240 bytes, 120 GF(2^16) symbols)
//	252..256 CRC-32 (big-endian)
const (
	standardPacketLen    = 256
	standardSyncOffset   = 0
	standardTypeOffset   = 1
	standardCallsign     = 2
	standardCallsignLen  = 4
	standardImageID      = 6
	standardIDOffset     = 7
	standardDimsOffset   = 9
	standardFlagsOffset  = 11
	standardPayloadStart = 12
	standardPayloadLen   = 240
	standardCRCOffset    = standardPacketLen - 4

	standardSyncByte = 0x55
	standardTypeByte = 0x67
)

// standardFormatType implements PacketFormat for the original 256-byte SSDV
// packet: a sync byte, a packet-type byte, and a callsign ahead of the
// common header fields, with a plain CRC-32 over everything but the sync
// byte and the CRC field itself.
type standardFormatType struct {
	headerLayout
}

// StandardFormat is the PacketFormat for 256-byte SSDV packets carrying a
// sync byte, packet-type byte, and callsign.
var StandardFormat PacketFormat = standardFormatType{
	headerLayout: headerLayout{
		packetLen:     standardPacketLen,
		imageIDOffset: standardImageID,
		idOffset:      standardIDOffset,
		dimsOffset:    standardDimsOffset,
		flagsOffset:   standardFlagsOffset,
		payloadOffset: standardPayloadStart,
		payloadLen:    standardPayloadLen,
	},
}

func (f standardFormatType) ImageScopeRanges() [][2]int {
	return append(f.imageScopeRanges(), [2]int{standardCallsign, standardCallsignLen})
}

// ComputeCRC computes the standard CRC-32 over every byte except the sync
// byte at offset 0 and the trailing 4-byte CRC field, matching the
// reference encoder's CRC_DATA_OFFSET convention.
func (f standardFormatType) ComputeCRC(packet []byte) uint32 {
	return computeStandardCRC32(packet[1:standardCRCOffset])
}

func (f standardFormatType) VerifyCRC(packet []byte) bool {
	return f.ComputeCRC(packet) == readUint32(packet[standardCRCOffset:])
}

func (f standardFormatType) SetCRC(packet []byte, crc uint32) {
	writeUint32(packet[standardCRCOffset:], crc)
}

// SetFixedFields writes the sync byte and packet-type byte. The type byte
// is fixed at 0x67 regardless of whether the packet is systematic or FEC,
// matching the reference encoder's no_fec::set_fixed_fields.
func (f standardFormatType) SetFixedFields(packet []byte) {
	packet[standardSyncOffset] = standardSyncByte
	packet[standardTypeOffset] = standardTypeByte
}
