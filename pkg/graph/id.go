package graph

import "github.com/google/uuid"

// namespace scopes node IDs so the same path always hashes to the same ID.
var namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/chazu/csgkit/graph"))

// NodeID identifies a node. IDs are name-based (UUID v5) so re-evaluating an
// unchanged script yields the same IDs.
type NodeID uuid.UUID

// ZeroID is the absent node ID.
var ZeroID NodeID

// NewNodeID derives a stable ID from a node path such as "part/bracket" or
// "box/3".
func NewNodeID(path string) NodeID {
	return NodeID(uuid.NewSHA1(namespace, []byte(path)))
}

// IsZero reports whether id is the zero ID.
func (id NodeID) IsZero() bool {
	return id == ZeroID
}

func (id NodeID) String() string {
	return uuid.UUID(id).String()
}

// Short returns the first eight hex digits, for messages.
func (id NodeID) Short() string {
	return id.String()[:8]
}

// MarshalText implements encoding.TextMarshaler.
func (id NodeID) MarshalText() ([]byte, error) {
	return uuid.UUID(id).MarshalText()
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *NodeID) UnmarshalText(b []byte) error {
	u, err := uuid.ParseBytes(b)
	if err != nil {
		return err
	}
	*id = NodeID(u)
	return nil
}
