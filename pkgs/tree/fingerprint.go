package tree

import (
	"encoding/binary"
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// Fingerprint hashes the structure of the tree: node kinds, labels, lexemes,
// depths and child order, plus whether the run failed. Title and run id are
// left out so two parses of the same token stream hash identically.
func (t *Tree) Fingerprint() [32]byte {
	buf := make([]byte, 0, 32*len(t.Nodes))
	t.Walk(func(id NodeID, depth int) bool {
		n := t.Nodes[id]
		if n.Kind == NodeRun {
			return true
		}
		buf = append(buf, byte(n.Kind))
		buf = binary.AppendUvarint(buf, uint64(depth))
		buf = appendString(buf, n.Label)
		buf = appendString(buf, n.Lexeme)
		return true
	})
	if t.Error != nil {
		buf = append(buf, 0xff)
	}
	return blake2b.Sum256(buf)
}

// FingerprintHex returns Fingerprint as a lowercase hex string
func (t *Tree) FingerprintHex() string {
	sum := t.Fingerprint()
	return hex.EncodeToString(sum[:])
}

func appendString(buf []byte, s string) []byte {
	buf = binary.AppendUvarint(buf, uint64(len(s)))
	return append(buf, s...)
}
