package fec

// Byte layout of the Longjiang-2 218-byte SSDV packet. There is no sync
// byte, packet-type byte, or callsign: the format folds their effect into
// the CRC seed (computeDSLWPCRC32) instead of spending wire bytes on them.
//
//	0      image ID
//	1..3   packet ID (big-endian uint16)
//	3..5   width/height (systematic) or numSystematic (FEC), big-endian
//	5      flags
//	6..214 payload (208 bytes, 104 GF(2^16) symbols)
//	214..218 CRC-32 (big-endian)
const (
	longjiang2PacketLen    = 218
	longjiang2ImageID      = 0
	longjiang2IDOffset     = 1
	longjiang2DimsOffset   = 3
	longjiang2FlagsOffset  = 5
	longjiang2PayloadStart = 6
	longjiang2PayloadLen   = 208
	longjiang2CRCOffset    = longjiang2PacketLen - 4
)

// longjiang2FormatType implements PacketFormat for the compact 218-byte
// format used by the Longjiang-2 spacecraft, which carries no sync byte,
// packet-type byte, or callsign.
type longjiang2FormatType struct {
	headerLayout
}

// Longjiang2Format is the PacketFormat for 218-byte Longjiang-2 packets.
var Longjiang2Format PacketFormat = longjiang2FormatType{
	headerLayout: headerLayout{
		packetLen:     longjiang2PacketLen,
		imageIDOffset: longjiang2ImageID,
		idOffset:      longjiang2IDOffset,
		dimsOffset:    longjiang2DimsOffset,
		flagsOffset:   longjiang2FlagsOffset,
		payloadOffset: longjiang2PayloadStart,
		payloadLen:    longjiang2PayloadLen,
	},
}

func (f longjiang2FormatType) ImageScopeRanges() [][2]int {
	return f.imageScopeRanges()
}

// ComputeCRC computes the DSLWP-seeded CRC-32 over every byte except the
// trailing 4-byte CRC field itself; there is no leading byte to exclude,
// unlike the standard format's sync byte.
func (f longjiang2FormatType) ComputeCRC(packet []byte) uint32 {
	return computeDSLWPCRC32(packet[:longjiang2CRCOffset])
}

func (f longjiang2FormatType) VerifyCRC(packet []byte) bool {
	return f.ComputeCRC(packet) == readUint32(packet[longjiang2CRCOffset:])
}

func (f longjiang2FormatType) SetCRC(packet []byte, crc uint32) {
	writeUint32(packet[longjiang2CRCOffset:], crc)
}

// SetFixedFields is a no-op: the Longjiang-2 format has no constant,
// content-independent bytes.
func (f longjiang2FormatType) SetFixedFields(packet []byte) {}
