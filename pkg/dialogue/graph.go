// Package dialogue holds the authored conversation data: nodes, the options
// that connect them, and the read-only Graph the runner walks.
package dialogue

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
)

var (
	ErrMalformed     = errors.New("malformed dialogue data")
	ErrEmptyGUID     = errors.New("node has an empty guid")
	ErrDuplicateGUID = errors.New("duplicate node guid")
)

// LoadError reports why dialogue data could not be turned into a Graph.
type LoadError struct {
	Index int    // node position in the document, -1 when not node specific
	GUID  string // offending guid, if any
	Err   error
}

func (e *LoadError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("load dialogue: %v", e.Err)
	}
	if e.GUID == "" {
		return fmt.Sprintf("load dialogue: node %d: %v", e.Index, e.Err)
	}
	return fmt.Sprintf("load dialogue: node %d (%s): %v", e.Index, e.GUID, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Document is the serialized form of a dialogue graph.
type Document struct {
	StartNodeGUID string `json:"startNodeGuid" yaml:"startNodeGuid"`
	Nodes         []Node `json:"nodes" yaml:"nodes"`
}

// Graph is an immutable, keyed set of nodes. It is safe to share between
// any number of runners.
type Graph struct {
	startNodeGUID string
	order         []string
	nodes         map[string]*Node
}

// Load decodes JSON dialogue data and builds a Graph from it.
func Load(data []byte) (*Graph, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &LoadError{Index: -1, Err: fmt.Errorf("%w: %v", ErrMalformed, err)}
	}
	return New(doc)
}

// New builds a Graph from a document. Keys must be unique and non-empty.
func New(doc Document) (*Graph, error) {
	g := &Graph{
		startNodeGUID: doc.StartNodeGUID,
		order:         make([]string, 0, len(doc.Nodes)),
		nodes:         make(map[string]*Node, len(doc.Nodes)),
	}

	for i := range doc.Nodes {
		n := doc.Nodes[i]
		if n.GUID == "" {
			return nil, &LoadError{Index: i, Err: ErrEmptyGUID}
		}
		if _, exists := g.nodes[n.GUID]; exists {
			return nil, &LoadError{Index: i, GUID: n.GUID, Err: ErrDuplicateGUID}
		}
		n.Options = append([]Option(nil), n.Options...)
		g.nodes[n.GUID] = &n
		g.order = append(g.order, n.GUID)
	}

	return g, nil
}

// StartNodeGUID returns the configured entry point, which may be empty.
func (g *Graph) StartNodeGUID() string {
	return g.startNodeGUID
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.order)
}

// StartNode returns the designated start node, or the first loaded node when
// no start is configured. It returns nil for an empty graph or a start GUID
// that does not exist.
func (g *Graph) StartNode() *Node {
	if g.startNodeGUID == "" {
		if len(g.order) == 0 {
			return nil
		}
		return g.nodes[g.order[0]].clone()
	}
	return g.nodes[g.startNodeGUID].clone()
}

// Node looks up a node by GUID. Empty and unknown keys return nil.
func (g *Graph) Node(guid string) *Node {
	if guid == "" {
		return nil
	}
	return g.nodes[guid].clone()
}

// Nodes returns the nodes in load order.
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, 0, len(g.order))
	for _, guid := range g.order {
		nodes = append(nodes, g.nodes[guid].clone())
	}
	return nodes
}

// Document rebuilds the serializable form of the graph.
func (g *Graph) Document() Document {
	doc := Document{
		StartNodeGUID: g.startNodeGUID,
		Nodes:         make([]Node, 0, len(g.order)),
	}
	for _, guid := range g.order {
		doc.Nodes = append(doc.Nodes, *g.nodes[guid].clone())
	}
	return doc
}

// clone hands out a copy so callers cannot edit a shared graph. nil stays nil.
func (n *Node) clone() *Node {
	if n == nil {
		return nil
	}
	c := *n
	c.Options = slices.Clone(n.Options)
	return &c
}
