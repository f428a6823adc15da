// Command ssdv-fec encodes and decodes SSDV images using the systematic
// erasure FEC scheme implemented by package fec. Input and output files are
// bare concatenations of fixed-length packets; there is no framing.
package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/daniestevez/ssdv-fec-go/fec"
)

const (
	exitOK          = 0
	exitUserError   = 1
	exitDecodeError = 2
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	top := flag.NewFlagSet("ssdv-fec", flag.ContinueOnError)
	formatName := top.String("format", "standard", "SSDV packet format: standard or longjiang2")
	top.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: ssdv-fec [--format standard|longjiang2] encode|decode ...")
	}
	if err := top.Parse(args); err != nil {
		return exitUserError
	}

	format, err := parseFormat(*formatName)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitUserError
	}

	rest := top.Args()
	if len(rest) == 0 {
		top.Usage()
		return exitUserError
	}

	switch rest[0] {
	case "encode":
		return runEncode(format, rest[1:])
	case "decode":
		return runDecode(format, rest[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", rest[0])
		return exitUserError
	}
}

func parseFormat(name string) (fec.PacketFormat, error) {
	switch name {
	case "standard":
		return fec.StandardFormat, nil
	case "longjiang2":
		return fec.Longjiang2Format, nil
	default:
		return nil, fmt.Errorf("unknown format %q (want standard or longjiang2)", name)
	}
}

func runEncode(format fec.PacketFormat, args []string) int {
	fs := flag.NewFlagSet("encode", flag.ContinueOnError)
	first := fs.Uint("first", 0, "first packet ID to emit")
	npackets := fs.Int("npackets", -1, "number of packets to emit (mutually exclusive with --rate)")
	rate := fs.Float64("rate", -1, "coding rate in (0,1]; number of packets is ceil(k/rate)")
	if err := fs.Parse(args); err != nil {
		return exitUserError
	}
	if fs.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "usage: ssdv-fec encode [flags] <in> <out>")
		return exitUserError
	}
	inPath, outPath := fs.Arg(0), fs.Arg(1)

	if *first > 0xffff {
		fmt.Fprintln(os.Stderr, "--first must fit in 16 bits")
		return exitUserError
	}

	npacketsGiven := *npackets >= 0
	rateGiven := *rate >= 0
	if npacketsGiven && rateGiven {
		fmt.Fprintln(os.Stderr, "the --npackets and --rate options are mutually exclusive")
		return exitUserError
	}
	if !npacketsGiven && !rateGiven {
		fmt.Fprintln(os.Stderr, "one of --npackets or --rate must be given")
		return exitUserError
	}
	if rateGiven && (*rate <= 0 || *rate > 1) {
		fmt.Fprintln(os.Stderr, "the coding rate must be in the interval (0, 1]")
		return exitUserError
	}

	image, err := os.ReadFile(inPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitUserError
	}
	L := format.PacketLen()
	if len(image) == 0 || len(image)%L != 0 {
		fmt.Fprintln(os.Stderr, "input file length is not a multiple of the packet length")
		return exitUserError
	}
	k := len(image) / L

	var n int
	if npacketsGiven {
		n = *npackets
	} else {
		n = int(math.Ceil(float64(k) / *rate))
	}
	if n <= 0 {
		fmt.Fprintln(os.Stderr, "number of packets to encode must be positive")
		return exitUserError
	}
	if uint64(*first)+uint64(n) > 1<<16 {
		fmt.Fprintln(os.Stderr, fec.ErrDuplicatePacketID)
		return exitUserError
	}

	out := make([]byte, n*L)
	for j := 0; j < n; j++ {
		id := uint16(int(*first) + j)
		if err := fec.Encode(format, image, id, out[j*L:(j+1)*L]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return exitUserError
		}
	}

	if err := os.WriteFile(outPath, out, 0o644); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitUserError
	}
	return exitOK
}

func runDecode(format fec.PacketFormat, args []string) int {
	fs := flag.NewFlagSet("decode", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return exitUserError
	}
	if fs.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "usage: ssdv-fec decode <in> <out>")
		return exitUserError
	}
	inPath, outPath := fs.Arg(0), fs.Arg(1)

	recv, err := os.ReadFile(inPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitUserError
	}
	L := format.PacketLen()
	if len(recv) == 0 || len(recv)%L != 0 {
		fmt.Fprintln(os.Stderr, "input file length is not a multiple of the packet length")
		return exitUserError
	}

	k, badCRC, err := determineSystematicCount(format, recv)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitDecodeError
	}
	if badCRC > 0 {
		fmt.Fprintf(os.Stderr, "%d packet(s) failed CRC and were discarded\n", badCRC)
	}

	out := make([]byte, k*L)
	if err := fec.Decode(format, recv, out); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitDecodeError
	}

	if err := os.WriteFile(outPath, out, 0o644); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitUserError
	}
	return exitOK
}

// determineSystematicCount scans recv for the systematic packet count k, the
// way the decoder needs to know before it can size its output buffer. Every
// systematic packet's EOI bit, when present, gives k = id+1; every FEC
// packet's numSystematic field gives k directly. Both are cross-checked for
// agreement. Only CRC-valid packets are considered, mirroring the decoder's
// own input-validation policy.
func determineSystematicCount(format fec.PacketFormat, recv []byte) (k int, badCRC int, err error) {
	L := format.PacketLen()
	n := len(recv) / L
	var fromEOI, fromFEC = -1, -1

	for i := 0; i < n; i++ {
		pkt := recv[i*L : i*L+L]
		if !format.VerifyCRC(pkt) {
			badCRC++
			continue
		}
		if format.IsFECPacket(pkt) {
			if nsys, ok := format.NumSystematic(pkt); ok {
				if fromFEC >= 0 && int(nsys) != fromFEC {
					return 0, badCRC, fec.ErrMalformedInput
				}
				fromFEC = int(nsys)
			}
			continue
		}
		if format.IsEOI(pkt) {
			id := int(format.PacketID(pkt))
			if fromEOI >= 0 && id+1 != fromEOI {
				return 0, badCRC, fec.ErrMalformedInput
			}
			fromEOI = id + 1
		}
	}

	switch {
	case fromEOI < 0 && fromFEC < 0:
		return 0, badCRC, fec.ErrNotEnoughPackets
	case fromEOI >= 0 && fromFEC >= 0 && fromEOI != fromFEC:
		return 0, badCRC, fec.ErrMalformedInput
	case fromEOI >= 0:
		return fromEOI, badCRC, nil
	default:
		return fromFEC, badCRC, nil
	}
}
