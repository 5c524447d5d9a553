package render

import (
	"io"

	"github.com/fxamacker/cbor/v2"
	jsoniter "github.com/json-iterator/go"

	"github.com/aledsdavies/treeparse/pkgs/tree"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Document is the machine-readable form of a tree shared by the JSON and
// CBOR renderers. Nodes are listed in arena order so ids index the slice.
type Document struct {
	RunID       string         `json:"run_id"`
	Title       string         `json:"title"`
	Ok          bool           `json:"ok"`
	Fingerprint string         `json:"fingerprint"`
	Error       *DocumentError `json:"error,omitempty"`
	Nodes       []DocumentNode `json:"nodes"`
}

// DocumentError mirrors tree.ErrorRecord
type DocumentError struct {
	Message string `json:"message"`
	Node    int    `json:"node"`
}

// DocumentNode mirrors tree.Node
type DocumentNode struct {
	ID       int    `json:"id"`
	Kind     string `json:"kind"`
	Label    string `json:"label"`
	Lexeme   string `json:"lexeme"`
	Parent   int    `json:"parent"`
	Children []int  `json:"children,omitempty"`
}

// NewDocument converts t into its serialisable form
func NewDocument(t *tree.Tree) *Document {
	doc := &Document{
		RunID:       t.RunID.String(),
		Title:       t.Title,
		Ok:          t.Ok(),
		Fingerprint: t.FingerprintHex(),
		Nodes:       make([]DocumentNode, len(t.Nodes)),
	}
	if t.Error != nil {
		doc.Error = &DocumentError{Message: t.Error.Message, Node: int(t.Error.Node)}
	}

	for i, n := range t.Nodes {
		dn := DocumentNode{
			ID:     i,
			Kind:   n.Kind.String(),
			Label:  n.Label,
			Lexeme: n.Lexeme,
			Parent: int(n.Parent),
		}
		for _, c := range n.Children {
			dn.Children = append(dn.Children, int(c))
		}
		doc.Nodes[i] = dn
	}
	return doc
}

type jsonRenderer struct{}

func (jsonRenderer) Render(w io.Writer, t *tree.Tree) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewDocument(t))
}

// cborRenderer uses core deterministic encoding: identical trees produce
// identical bytes
type cborRenderer struct {
	mode cbor.EncMode
}

func newCBORRenderer() (*cborRenderer, error) {
	mode, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return nil, err
	}
	return &cborRenderer{mode: mode}, nil
}

func (r *cborRenderer) Render(w io.Writer, t *tree.Tree) error {
	return r.mode.NewEncoder(w).Encode(NewDocument(t))
}
