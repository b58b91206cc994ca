package graph

import (
	"github.com/aretw0/mentor/pkg/domain"
)

// Graph is the immutable node arena of one section.
type Graph struct {
	sectionID string
	policy    domain.MentorPolicy
	nodes     []domain.WorkflowNode
	byKey     map[string]domain.NodeID
	path      []domain.NodeID
	onPath    map[domain.NodeID]bool
}

const (
	instructionID domain.NodeID = 0
)

// Build creates the flow graph of a section.
// It rejects duplicate or empty case IDs, dangling references and flows
// that do not reach Total within nodeCount+1 steps.
func Build(section domain.Section) (*Graph, error) {
	g := &Graph{
		sectionID: section.ID,
		policy:    section.Policy.Normalize(),
		byKey:     make(map[string]domain.NodeID, len(section.Cases)+2),
		onPath:    make(map[domain.NodeID]bool),
	}

	g.nodes = append(g.nodes, domain.WorkflowNode{
		ID:       instructionID,
		Kind:     domain.KindInstruction,
		Key:      domain.InstructionRef,
		Question: section.Instruction,
		Next:     domain.NoNode,
	})
	g.byKey[domain.InstructionRef] = instructionID

	for _, c := range section.Cases {
		if c.ID == "" {
			return nil, domain.ErrEmptyCaseID
		}
		if _, exists := g.byKey[c.ID]; exists || c.ID == domain.TotalRef {
			return nil, &domain.DuplicateCaseError{CaseID: c.ID}
		}
		id := domain.NodeID(len(g.nodes))
		g.nodes = append(g.nodes, domain.WorkflowNode{
			ID:           id,
			Kind:         domain.KindCase,
			Key:          c.ID,
			CaseID:       c.ID,
			Question:     c.Question,
			MentorAnswer: c.MentorAnswer,
			Assets:       append([]string(nil), c.Assets...),
			Next:         domain.NoNode,
		})
		g.byKey[c.ID] = id
	}

	totalID := domain.NodeID(len(g.nodes))
	g.nodes = append(g.nodes, domain.WorkflowNode{
		ID:   totalID,
		Kind: domain.KindTotal,
		Key:  domain.TotalRef,
		Next: domain.NoNode,
	})
	g.byKey[domain.TotalRef] = totalID

	// Link
	start := section.Start
	if start == "" && len(section.Cases) > 0 {
		start = section.Cases[0].ID
	}
	next, err := g.resolve(domain.InstructionRef, start)
	if err != nil {
		return nil, err
	}
	g.nodes[instructionID].Next = next

	for _, c := range section.Cases {
		next, err := g.resolve(c.ID, c.Next)
		if err != nil {
			return nil, err
		}
		g.nodes[g.byKey[c.ID]].Next = next
	}

	if err := g.walk(); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Graph) resolve(from, ref string) (domain.NodeID, error) {
	if domain.IsTotalRef(ref) {
		return g.byKey[domain.TotalRef], nil
	}
	id, ok := g.byKey[ref]
	if !ok || id == instructionID {
		return domain.NoNode, &domain.DanglingReferenceError{From: from, Ref: ref}
	}
	return id, nil
}

// walk follows next references from Instruction and records the path.
func (g *Graph) walk() error {
	limit := len(g.nodes) + 1
	seen := make(map[domain.NodeID]bool, len(g.nodes))
	cur := instructionID
	for steps := 0; ; steps++ {
		if steps > limit || seen[cur] {
			return &domain.CyclicFlowError{NodeKey: g.nodes[cur].Key, Steps: steps}
		}
		seen[cur] = true
		g.path = append(g.path, cur)
		g.onPath[cur] = true
		if g.nodes[cur].Kind == domain.KindTotal {
			return nil
		}
		cur = g.nodes[cur].Next
	}
}

// SectionID returns the identity of the section the graph was built from.
func (g *Graph) SectionID() string { return g.sectionID }

// Policy returns the effective mentor policy.
func (g *Graph) Policy() domain.MentorPolicy { return g.policy }

// Len returns the number of nodes, Instruction and Total included.
func (g *Graph) Len() int { return len(g.nodes) }

// Instruction returns the entry node.
func (g *Graph) Instruction() domain.WorkflowNode { return g.nodes[instructionID] }

// Total returns the terminal node.
func (g *Graph) Total() domain.WorkflowNode { return g.nodes[len(g.nodes)-1] }

// Node returns the node with the given ID.
func (g *Graph) Node(id domain.NodeID) (domain.WorkflowNode, bool) {
	if id < 0 || int(id) >= len(g.nodes) {
		return domain.WorkflowNode{}, false
	}
	return g.nodes[id], true
}

// Lookup resolves a stable node key (InstructionRef, a case ID or TotalRef).
func (g *Graph) Lookup(key string) (domain.WorkflowNode, bool) {
	id, ok := g.byKey[key]
	if !ok {
		return domain.WorkflowNode{}, false
	}
	return g.nodes[id], true
}

// Nodes returns all nodes in construction order.
func (g *Graph) Nodes() []domain.WorkflowNode {
	out := make([]domain.WorkflowNode, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// Cases returns the case nodes in construction order.
func (g *Graph) Cases() []domain.WorkflowNode {
	out := make([]domain.WorkflowNode, 0, len(g.nodes)-2)
	for _, n := range g.nodes {
		if n.IsCase() {
			out = append(out, n)
		}
	}
	return out
}

// Path returns the nodes reached by following next references from Instruction to Total.
func (g *Graph) Path() []domain.WorkflowNode {
	out := make([]domain.WorkflowNode, len(g.path))
	for i, id := range g.path {
		out[i] = g.nodes[id]
	}
	return out
}

// ReachableCases returns the cases on the path, in traversal order.
func (g *Graph) ReachableCases() []domain.WorkflowNode {
	out := make([]domain.WorkflowNode, 0, len(g.path))
	for _, id := range g.path {
		if g.nodes[id].IsCase() {
			out = append(out, g.nodes[id])
		}
	}
	return out
}

// Reachable reports whether the node lies on the Instruction -> Total path.
func (g *Graph) Reachable(id domain.NodeID) bool {
	return g.onPath[id]
}

// Unreachable returns the cases that the path never visits.
// Such cases can still be selected but never count towards completion.
func (g *Graph) Unreachable() []domain.WorkflowNode {
	var out []domain.WorkflowNode
	for _, n := range g.nodes {
		if n.IsCase() && !g.onPath[n.ID] {
			out = append(out, n)
		}
	}
	return out
}
