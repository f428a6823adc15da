// Command ssdv-fec-cabi is the C foreign-ABI wrapper around the fec
// package, built for flight-software integration (the AMSAT-DL ERMINAZ
// mission profile). It exposes plain pointer+length entry points with no
// semantics beyond calling-convention translation: all storage is
// caller-owned, and errors are reported as negative integers rather than
// Go errors.
//
// Built with `go build -buildmode=c-archive` (or c-shared) to produce a
// static library and header for linking into flight software; main is
// never actually run.
package main

/*
#include <stddef.h>
*/
import "C"

import (
	"unsafe"

	"github.com/daniestevez/ssdv-fec-go/fec"
)

// Encoder error codes, returned by ssdv_fec_encoder_setup.
const (
	errEncoderEmptyInput   C.int = -1
	errEncoderTooLongInput C.int = -2
)

// Decoder error codes, returned by ssdv_fec_decoder_decode.
const (
	errDecoderNotEnoughInput C.int = -21
	errDecoderOutputTooShort C.int = -22
	errDecoderMalformed      C.int = -24
	errDecoderSingularMatrix C.int = -26
)

// wireFormat is the packet format used by the ERMINAZ integration: the
// compact Longjiang-2 layout, chosen by the flight software for its smaller
// per-packet overhead.
var wireFormat = fec.Longjiang2Format

// Global encoder state. ssdv_fec_encoder_setup and ssdv_fec_encoder_encode
// are documented as not safe to call concurrently with each other or with
// themselves, matching the single global encoder instance the reference
// flight software wrapper uses on a single-threaded microcontroller.
var encoderImage []byte

// ssdv_fec_encoder_setup prepares the global encoder with the image's k
// systematic packets, given as the concatenation pointed to by
// ssdvPackets. Returns 0 on success, or a negative error code.
//
//export ssdv_fec_encoder_setup
func ssdv_fec_encoder_setup(ssdvPackets *C.char, numSsdvPackets C.int) C.int {
	n := int(numSsdvPackets)
	if n <= 0 {
		return errEncoderEmptyInput
	}
	if n > 1<<16 {
		return errEncoderTooLongInput
	}
	L := wireFormat.PacketLen()
	encoderImage = unsafe.Slice((*byte)(unsafe.Pointer(ssdvPackets)), n*L)
	return 0
}

// ssdv_fec_encoder_encode writes the packet with the given packet_id into
// output, using the encoder prepared by ssdv_fec_encoder_setup.
//
//export ssdv_fec_encoder_encode
func ssdv_fec_encoder_encode(packetID C.int, output *C.char) {
	L := wireFormat.PacketLen()
	out := unsafe.Slice((*byte)(unsafe.Pointer(output)), L)
	// The reference wrapper has no return path for encode errors: the
	// caller is required to have already passed a consistent image to
	// setup, so any failure here is an invariant violation rather than
	// something the flight software can act on.
	_ = fec.Encode(wireFormat, encoderImage, uint16(packetID), out)
}

// ssdv_fec_decoder_decode attempts to reconstruct an image from the
// numInputPackets packets at input, writing up to numOutputPackets
// recovered systematic packets to output. Returns the number of packets
// written on success, or a negative error code.
//
//export ssdv_fec_decoder_decode
func ssdv_fec_decoder_decode(input *C.char, numInputPackets C.int, output *C.char, numOutputPackets C.int) C.int {
	L := wireFormat.PacketLen()
	in := unsafe.Slice((*byte)(unsafe.Pointer(input)), int(numInputPackets)*L)
	out := unsafe.Slice((*byte)(unsafe.Pointer(output)), int(numOutputPackets)*L)

	switch err := fec.Decode(wireFormat, in, out); err {
	case nil:
		return numOutputPackets
	case fec.ErrNotEnoughPackets:
		return errDecoderNotEnoughInput
	case fec.ErrBufferSize:
		return errDecoderOutputTooShort
	case fec.ErrSingularMatrix:
		return errDecoderSingularMatrix
	default:
		return errDecoderMalformed
	}
}

func main() {}
