package fec

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldLaws(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 2000; i++ {
		a := Element(rng.Intn(1 << 16))
		b := Element(rng.Intn(1 << 16))
		c := Element(rng.Intn(1 << 16))

		assert.Equal(t, Element(0), Add(a, a), "a xor a must be 0")
		assert.Equal(t, a, Mul(a, 1), "a*1 must be a")
		assert.Equal(t, Mul(Mul(a, b), c), Mul(a, Mul(b, c)), "multiplication must associate")
		assert.Equal(t, Add(Mul(a, b), Mul(a, c)), Mul(a, Add(b, c)), "multiplication must distribute over addition")

		if a != 0 {
			assert.Equal(t, Element(1), Mul(a, Inverse(a)), "a*a^-1 must be 1")
		}
	}
}

func TestMulCommutes(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	for i := 0; i < 2000; i++ {
		a := Element(rng.Intn(1 << 16))
		b := Element(rng.Intn(1 << 16))
		assert.Equal(t, Mul(a, b), Mul(b, a))
	}
}

func TestElementFromIDIsBijective(t *testing.T) {
	seen := make(map[Element]bool, 1<<16)
	for id := 0; id < 1<<16; id++ {
		e := ElementFromID(uint16(id))
		require.False(t, seen[e], "id %d collided with a previous node", id)
		seen[e] = true
	}
	assert.Equal(t, Element(0), ElementFromID(0))
	assert.Len(t, seen, 1<<16)
}
