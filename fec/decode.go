package fec

// Decode reconstructs the k systematic packets of one image from recv,
// which holds n >= k received packets of format's length in arbitrary
// order, possibly with duplicates or packets that fail CRC. k is fixed by
// the caller via len(out)/format.PacketLen(); out must be exactly that
// many packets long.
//
// Decode mutates recv's payload bytes in place as part of Gauss-Jordan
// elimination; callers must treat recv as destroyed after the call.
func Decode(format PacketFormat, recv []byte, out []byte) error {
	L := format.PacketLen()
	if L <= 0 || len(recv)%L != 0 || len(out)%L != 0 {
		return ErrBufferSize
	}
	k := len(out) / L
	if k == 0 {
		return ErrMalformedInput
	}
	if k > 1<<16 {
		return ErrTooManyPackets
	}
	n := len(recv) / L
	payloadOff, payloadLen := format.PayloadRange()
	if payloadLen%2 != 0 {
		return ErrBufferSize
	}

	// Step 1: deduplicate by ID, dropping CRC failures and, once k distinct
	// valid IDs are found, ignoring anything further.
	rowOff := make([]int, 0, k)
	ids := make([]uint16, 0, k)
	seen := make(map[uint16]struct{}, k)

	for i := 0; i < n && len(rowOff) < k; i++ {
		pkt := recv[i*L : i*L+L]
		if !format.VerifyCRC(pkt) {
			continue
		}
		id := format.PacketID(pkt)
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
		rowOff = append(rowOff, i*L)
	}

	if len(rowOff) < k {
		return ErrNotEnoughPackets
	}

	// Step 2: short-circuit if the selected IDs are exactly {0,...,k-1}.
	if slot, ok := systematicOrder(ids, rowOff, k); ok {
		for i := 0; i < k; i++ {
			copy(out[i*L:i*L+L], recv[slot[i]:slot[i]+L])
		}
		return nil
	}

	// Step 3: build the k x k coefficient matrix expressing each selected
	// packet's payload as a linear combination of the k systematic
	// payloads: mat[r][c] is the weight of systematic symbol c in selected
	// packet r's payload (L_c evaluated at the r-th selected packet's ID;
	// see lagrange.go). Solving mat * m = s for m therefore recovers the
	// systematic payloads directly, with no separate re-evaluation step
	// once the matrix is reduced to the identity.
	weights := lagrangeWeights(k)
	mat := make([][]Element, k)
	for r := 0; r < k; r++ {
		mat[r] = lagrangeBasisRow(ids[r], k, weights)
	}

	// Step 4: Gauss-Jordan elimination, applying every row operation to the
	// matrix and to the corresponding payload row in recv in lockstep.
	numSymbols := payloadLen / 2
	for p := 0; p < k; p++ {
		pivot := -1
		for r := p; r < k; r++ {
			if mat[r][p] != 0 {
				pivot = r
				break
			}
		}
		if pivot < 0 {
			return ErrSingularMatrix
		}
		if pivot != p {
			mat[p], mat[pivot] = mat[pivot], mat[p]
			rowOff[p], rowOff[pivot] = rowOff[pivot], rowOff[p]
		}

		inv := Inverse(mat[p][p])
		for c := 0; c < k; c++ {
			mat[p][c] = Mul(mat[p][c], inv)
		}
		scalePayloadRow(recv, rowOff[p]+payloadOff, numSymbols, inv)

		for r := 0; r < k; r++ {
			if r == p {
				continue
			}
			factor := mat[r][p]
			if factor == 0 {
				continue
			}
			for c := 0; c < k; c++ {
				mat[r][c] = Add(mat[r][c], Mul(factor, mat[p][c]))
			}
			axpyPayloadRow(recv, rowOff[r]+payloadOff, rowOff[p]+payloadOff, numSymbols, factor)
		}
	}

	// Step 5: reconcile header fields and emit.
	imgID, width, height, flags, err := reconcileHeader(format, recv, rowOff, k)
	if err != nil {
		return err
	}
	scopeRanges := format.ImageScopeRanges()
	for i := 0; i < k; i++ {
		dst := out[i*L : i*L+L]
		copy(dst[payloadOff:payloadOff+payloadLen], recv[rowOff[i]+payloadOff:rowOff[i]+payloadOff+payloadLen])
		for _, r := range scopeRanges {
			copy(dst[r[0]:r[0]+r[1]], recv[rowOff[0]+r[0]:rowOff[0]+r[0]+r[1]])
		}
		format.SetImageID(dst, imgID)
		format.SetDimensions(dst, width, height)
		format.SetContentFlags(dst, flags)
		format.SetPacketID(dst, uint16(i))
		format.SetFECPacket(dst, false)
		format.SetEOI(dst, i == k-1)
		format.SetFixedFields(dst)
		format.SetCRC(dst, format.ComputeCRC(dst))
	}
	return nil
}

// systematicOrder reports whether ids is exactly the set {0,...,k-1} and,
// if so, returns recv offsets indexed by packet ID.
func systematicOrder(ids []uint16, rowOff []int, k int) ([]int, bool) {
	slot := make([]int, k)
	seen := make([]bool, k)
	for i, id := range ids {
		if int(id) >= k {
			return nil, false
		}
		slot[id] = rowOff[i]
		seen[id] = true
	}
	for _, ok := range seen {
		if !ok {
			return nil, false
		}
	}
	return slot, true
}

func scalePayloadRow(recv []byte, off int, numSymbols int, factor Element) {
	for j := 0; j < numSymbols; j++ {
		p := off + j*2
		m := Element(uint16(recv[p])<<8 | uint16(recv[p+1]))
		m = Mul(m, factor)
		recv[p] = byte(m >> 8)
		recv[p+1] = byte(m)
	}
}

// axpyPayloadRow adds factor*srcOff's row to dstOff's row, in place.
func axpyPayloadRow(recv []byte, dstOff, srcOff int, numSymbols int, factor Element) {
	for j := 0; j < numSymbols; j++ {
		dp := dstOff + j*2
		sp := srcOff + j*2
		d := Element(uint16(recv[dp])<<8 | uint16(recv[dp+1]))
		s := Element(uint16(recv[sp])<<8 | uint16(recv[sp+1]))
		d = Add(d, Mul(factor, s))
		recv[dp] = byte(d >> 8)
		recv[dp+1] = byte(d)
	}
}

// reconcileHeader derives the image ID, dimensions, and content flags
// shared by the reconstructed systematic packets from the selected
// packets at rowOff, verifying that every one of them agrees. Width and
// height are only carried by systematic-type packets, so at least one of
// the selected packets must be systematic; an all-FEC selection cannot
// recover them and is reported as malformed input.
func reconcileHeader(format PacketFormat, recv []byte, rowOff []int, k int) (imgID, width, height, flags uint8, err error) {
	first := recv[rowOff[0] : rowOff[0]+format.PacketLen()]
	imgID = format.ImageID(first)
	flags = format.ContentFlags(first)
	haveDims := false

	for _, off := range rowOff {
		pkt := recv[off : off+format.PacketLen()]
		if format.ImageID(pkt) != imgID {
			return 0, 0, 0, 0, ErrMalformedInput
		}
		if format.ContentFlags(pkt) != flags {
			return 0, 0, 0, 0, ErrMalformedInput
		}
		if w, h, ok := format.Dimensions(pkt); ok {
			if !haveDims {
				width, height = w, h
				haveDims = true
			} else if w != width || h != height {
				return 0, 0, 0, 0, ErrMalformedInput
			}
		}
		if nsys, ok := format.NumSystematic(pkt); ok && int(nsys) != k {
			return 0, 0, 0, 0, ErrMalformedInput
		}
	}
	if !haveDims {
		return 0, 0, 0, 0, ErrMalformedInput
	}
	return imgID, width, height, flags, nil
}
