package fec

import "hash/crc32"

// crc32DSLWPSeed is the fixed initial CRC-32 register value used by the
// Longjiang-2 packet format. It is not the standard 0xffffffff seed: the
// Longjiang-2 format omits the sync byte, packet-type byte, and callsign
// from the wire, and folds their effect into the CRC by starting the
// register here instead of at the all-ones value, so a packet's CRC still
// implicitly authenticates the fields the format dropped.
const crc32DSLWPSeed = 0x4EE4FDE1

// computeStandardCRC32 is the ordinary CRC-32 (IEEE 802.3 polynomial,
// 0xffffffff seed and final XOR), used by the standard SSDV packet format.
func computeStandardCRC32(data []byte) uint32 {
	return crc32.ChecksumIEEE(data)
}

// computeDSLWPCRC32 is the CRC-32 variant used by the Longjiang-2 packet
// format: same polynomial and final XOR as the standard CRC, but seeded
// from crc32DSLWPSeed instead of 0xffffffff.
//
// crc32.Update complements its crc argument on entry and exit, so passing
// it the seed directly and XORing the result would compute the CRC for a
// register that starts at ^crc32DSLWPSeed, not crc32DSLWPSeed. Passing the
// seed's complement cancels the entry complement instead.
func computeDSLWPCRC32(data []byte) uint32 {
	return crc32.Update(^uint32(crc32DSLWPSeed), crc32.IEEETable, data)
}
