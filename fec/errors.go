package fec

import "errors"

// Sentinel errors returned by Encode and Decode (spec §7). Callers
// distinguish them with errors.Is.
var (
	// ErrNotEnoughPackets is returned by Decode when fewer than k packets
	// with distinct, verified-CRC IDs were supplied.
	ErrNotEnoughPackets = errors.New("fec: not enough packets to reconstruct image")

	// ErrBufferSize is returned when a packet's length does not match the
	// format's PacketLen, or an image buffer's length is not a multiple of
	// the format's packet length.
	ErrBufferSize = errors.New("fec: packet or buffer has wrong size for format")

	// ErrMalformedInput is returned when k is zero, when an image's
	// systematic packets disagree on image-scope fields, or when the packets
	// selected by Decode disagree on them (or none of them is systematic).
	// A packet that fails its CRC check is dropped instead; if too few
	// remain, Decode returns ErrNotEnoughPackets.
	ErrMalformedInput = errors.New("fec: malformed packet data")

	// ErrDuplicatePacketID is returned when a requested run of packet IDs
	// would wrap past 1<<16 and collide with IDs already assigned to the
	// same image. Decode drops duplicate IDs silently instead; this is an
	// encode-side concern (see cmd/ssdv-fec).
	ErrDuplicatePacketID = errors.New("fec: packet id range wraps past the 16-bit id space")

	// ErrSingularMatrix is returned by Decode in the (practically
	// unreachable, since every packet ID maps to a distinct field node)
	// case that the selected k packet IDs yield a non-invertible matrix.
	ErrSingularMatrix = errors.New("fec: singular coefficient matrix")

	// ErrTooManyPackets is returned by Encode when the number of
	// systematic packets would exceed the format's packet-ID space.
	ErrTooManyPackets = errors.New("fec: image requires more systematic packets than the format's id space allows")
)
