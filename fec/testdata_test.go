package fec

import "math/rand"

// buildImage constructs a synthetic image of k systematic packets in
// format, with deterministic pseudo-random payload content and consistent
// header fields, for use as test fixtures. It stands in for the shipped
// test vectors (e.g. the 230-packet Longjiang-2 image referenced by the
// concrete end-to-end scenarios) at a size practical for unit tests.
func buildImage(format PacketFormat, k int, seed int64) []byte {
	rng := rand.New(rand.NewSource(seed))
	L := format.PacketLen()
	payloadOff, payloadLen := format.PayloadRange()
	image := make([]byte, k*L)
	for i := 0; i < k; i++ {
		pkt := image[i*L : (i+1)*L]
		rng.Read(pkt[payloadOff : payloadOff+payloadLen])
		format.SetImageID(pkt, 99)
		format.SetDimensions(pkt, 64, 48)
		format.SetPacketID(pkt, uint16(i))
		format.SetFECPacket(pkt, false)
		format.SetEOI(pkt, i == k-1)
		format.SetFixedFields(pkt)
		format.SetCRC(pkt, format.ComputeCRC(pkt))
	}
	return image
}
