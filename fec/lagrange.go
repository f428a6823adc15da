package fec

// Barycentric Lagrange interpolation over the k systematic nodes
// node(0), ..., node(k-1). Every packet of an image, systematic or FEC,
// carries the evaluation at its own node of the same degree-<k polynomial
// P for which P(node(i)) = m[i] for the k systematic payloads m. Writing
// P in the Lagrange basis for those nodes, P(x) = Σ_c m[c] * L_c(x), gives
// a way to express any packet's payload as a fixed linear combination of
// the systematic payloads without ever forming P's monomial coefficients,
// which is what both the encoder's FEC branch and the decoder's
// coefficient matrix use.
//
// Grounded on original_source/ssdv-fec/src/fec.rs's wj_inv/
// values_to_lagrange/encode_fec_data.

// lagrangeWeights returns w_0, ..., w_{k-1}, the barycentric weights
// w_c = 1 / Π_{m != c} (node(c) - node(m)).
func lagrangeWeights(k int) []Element {
	w := make([]Element, k)
	for c := 0; c < k; c++ {
		xc := ElementFromID(uint16(c))
		denom := Element(1)
		for m := 0; m < k; m++ {
			if m == c {
				continue
			}
			denom = Mul(denom, Add(xc, ElementFromID(uint16(m))))
		}
		w[c] = Inverse(denom)
	}
	return w
}

// lagrangeNodePoly returns l(x) = Π_{c=0}^{k-1} (x - node(c)).
func lagrangeNodePoly(x Element, k int) Element {
	lx := Element(1)
	for c := 0; c < k; c++ {
		lx = Mul(lx, Add(x, ElementFromID(uint16(c))))
	}
	return lx
}

// lagrangeBasisRow returns (L_0(id), ..., L_{k-1}(id)), the coefficients
// expressing the payload of packet id as Σ_c row[c] * m[c], the c-th
// systematic packet's payload. weights must be lagrangeWeights(k).
//
// For id < k, l(x) and the (x - node(id)) term in L_id's own product both
// vanish at x = node(id), so the barycentric formula is indeterminate;
// packet id is itself systematic and its payload is m[id] verbatim, so the
// row is the unit vector at id.
func lagrangeBasisRow(id uint16, k int, weights []Element) []Element {
	row := make([]Element, k)
	if int(id) < k {
		row[id] = 1
		return row
	}
	x := ElementFromID(id)
	lx := lagrangeNodePoly(x, k)
	for c := 0; c < k; c++ {
		xc := ElementFromID(uint16(c))
		row[c] = Mul(lx, Mul(weights[c], Inverse(Add(x, xc))))
	}
	return row
}
