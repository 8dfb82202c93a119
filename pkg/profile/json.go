package profile

import (
	"encoding/json"
	"io"

	"github.com/matzehuels/stackflame/pkg/errors"
)

type jsonNode struct {
	Name     string      `json:"name"`
	Value    float64     `json:"value,omitempty"`
	Self     float64     `json:"self,omitempty"`
	Kind     string      `json:"kind,omitempty"`
	Children []*jsonNode `json:"children,omitempty"`
}

// ReadJSON decodes a JSON call tree:
//
//	{"name": "all", "value": 10, "children": [{"name": "main", "value": 10}]}
//
// Missing inclusive values are derived from the children and self weights.
// A node name may carry a kind annotation instead of a "kind" field.
func ReadJSON(r io.Reader) (*Node, error) {
	var data jsonNode
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidProfile, err, "decode JSON tree")
	}
	root, err := fromJSON(&data, "root")
	if err != nil {
		return nil, err
	}
	root.Normalize()
	if root.Value <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidProfile, "profile has no samples")
	}
	return root, nil
}

func fromJSON(in *jsonNode, path string) (*Node, error) {
	if in == nil {
		return nil, errors.New(errors.ErrCodeInvalidProfile, "%s: null node", path)
	}
	if in.Value < 0 || in.Self < 0 {
		return nil, errors.New(errors.ErrCodeInvalidProfile, "%s: negative weight", path)
	}
	name, kind := ParseName(in.Name)
	if in.Kind != "" {
		kind = ParseKind(in.Kind)
	}
	n := &Node{Name: name, Kind: kind, Value: in.Value, Self: in.Self}
	for _, c := range in.Children {
		child, err := fromJSON(c, path+"/"+c.nameOrIndex())
		if err != nil {
			return nil, err
		}
		n.Children = append(n.Children, child)
	}
	return n, nil
}

func (n *jsonNode) nameOrIndex() string {
	if n == nil || n.Name == "" {
		return "?"
	}
	return n.Name
}

// WriteJSON encodes the tree rooted at root. The output can be read back
// with [ReadJSON].
func WriteJSON(root *Node, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(toJSON(root)); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode JSON tree")
	}
	return nil
}

func toJSON(n *Node) *jsonNode {
	out := &jsonNode{Name: n.Name, Value: n.Value, Self: n.Self}
	if n.Kind != KindUnknown {
		out.Kind = n.Kind.String()
	}
	for _, c := range n.Children {
		out.Children = append(out.Children, toJSON(c))
	}
	return out
}
