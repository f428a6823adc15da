package fec

// Encode writes into out the packet with the given 16-bit id.
//
// image must hold exactly k systematic packets of format's length,
// back-to-back; k is derived from len(image)/format.PacketLen(). If id < k,
// out is a copy of systematic slot id (payload and all non-payload fields
// alike), after which this call rewrites the packet ID, the FEC and EOI
// flags, the fixed fields and the CRC. If id >=
// k, out's payload is, for each column, the evaluation at the field node for
// id of the unique degree-<k polynomial that passes through the k
// systematic symbols at nodes 0..k-1 (computed via barycentric Lagrange
// interpolation, see lagrange.go), and its image-scoped header fields
// (image ID, width/height or numSystematic, content flags) are copied from
// slot 0, since every systematic slot is required to agree on them.
func Encode(format PacketFormat, image []byte, id uint16, out []byte) error {
	L := format.PacketLen()
	if L <= 0 || len(image)%L != 0 {
		return ErrBufferSize
	}
	k := len(image) / L
	if k == 0 {
		return ErrMalformedInput
	}
	if k > 1<<16 {
		return ErrTooManyPackets
	}
	if len(out) != L {
		return ErrBufferSize
	}
	if err := checkSystematicAgreement(format, image, L, k); err != nil {
		return err
	}

	payloadOff, payloadLen := format.PayloadRange()

	if int(id) < k {
		copy(out, image[int(id)*L:int(id)*L+L])
	} else {
		slot0 := image[:L]
		copy(out, slot0)
		numSymbols := payloadLen / 2
		row := lagrangeBasisRow(id, k, lagrangeWeights(k))
		for j := 0; j < numSymbols; j++ {
			acc := Element(0)
			for c := 0; c < k; c++ {
				rowOff := c*L + payloadOff + j*2
				m := Element(uint16(image[rowOff])<<8 | uint16(image[rowOff+1]))
				acc = Add(acc, Mul(row[c], m))
			}
			out[payloadOff+j*2] = byte(acc >> 8)
			out[payloadOff+j*2+1] = byte(acc)
		}
		format.SetNumSystematic(out, uint16(k))
	}

	format.SetPacketID(out, id)
	format.SetFECPacket(out, int(id) >= k)
	format.SetEOI(out, int(id) == k-1)
	format.SetFixedFields(out)
	format.SetCRC(out, format.ComputeCRC(out))
	return nil
}

// checkSystematicAgreement verifies that every systematic slot in image
// agrees on the fields the format declares image-scoped, plus width/height
// and content flags, which the encoder also requires to be consistent even
// though they are not part of ImageScopeRanges (see packet.go).
func checkSystematicAgreement(format PacketFormat, image []byte, L, k int) error {
	slot0 := image[:L]
	w0, h0, _ := format.Dimensions(slot0)
	flags0 := format.ContentFlags(slot0)
	ranges := format.ImageScopeRanges()
	for i := 1; i < k; i++ {
		slot := image[i*L : i*L+L]
		for _, r := range ranges {
			a := slot0[r[0] : r[0]+r[1]]
			b := slot[r[0] : r[0]+r[1]]
			for j := range a {
				if a[j] != b[j] {
					return ErrMalformedInput
				}
			}
		}
		w, h, _ := format.Dimensions(slot)
		if w != w0 || h != h0 {
			return ErrMalformedInput
		}
		if format.ContentFlags(slot) != flags0 {
			return ErrMalformedInput
		}
	}
	return nil
}
