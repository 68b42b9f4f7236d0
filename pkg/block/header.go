package block

import (
	"encoding/binary"

	"github.com/Klingon-tech/scroogecoin-core/pkg/crypto"
	"github.com/Klingon-tech/scroogecoin-core/pkg/types"
)

// Header contains block metadata. Trimmed from the teacher's header to the
// fields this project's block tree and merkle bookkeeping actually use —
// no PoW/PoA fields, since mining and staking consensus are out of scope.
type Header struct {
	Version    uint32     `json:"version"`
	PrevHash   types.Hash `json:"prev_hash"`
	MerkleRoot types.Hash `json:"merkle_root"`
	Height     uint64     `json:"height"`
}

// Hash computes the block header hash.
func (h *Header) Hash() types.Hash {
	return crypto.Hash(h.SigningBytes())
}

// SigningBytes returns the canonical bytes for hashing.
// Format: version(4) | prev_hash(32) | merkle_root(32) | height(8)
func (h *Header) SigningBytes() []byte {
	buf := make([]byte, 0, 76)
	buf = binary.LittleEndian.AppendUint32(buf, h.Version)
	buf = append(buf, h.PrevHash[:]...)
	buf = append(buf, h.MerkleRoot[:]...)
	buf = binary.LittleEndian.AppendUint64(buf, h.Height)
	return buf
}
