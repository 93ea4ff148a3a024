package types

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
)

// BlockMeta is the handle a peer hands over together with each downloaded
// block. Progress tracking never looks inside it.
type BlockMeta struct {
	Height int64
	Hash   []byte
}

// NewBlockMeta returns a BlockMeta for the given height with a hash derived
// from the chain ID and the height. Only the simulated peer uses it.
func NewBlockMeta(chainID string, height int64) *BlockMeta {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(height))
	h := sha256.New()
	h.Write([]byte(chainID))
	h.Write(buf[:])
	return &BlockMeta{Height: height, Hash: h.Sum(nil)}
}

// String returns a short human readable form, e.g. "12#A1B2C3D4E5F6".
func (b *BlockMeta) String() string {
	if b == nil {
		return "nil-BlockMeta"
	}
	hash := b.Hash
	if len(hash) > 6 {
		hash = hash[:6]
	}
	return fmt.Sprintf("%d#%X", b.Height, hash)
}
