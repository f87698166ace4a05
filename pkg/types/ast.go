package types

import (
	"strconv"
	"strings"
)

// NodeType identifies the type of an AST node.
type NodeType string

const (
	NodeLiteral  NodeType = "literal"  // 12, "s", true, null
	NodeList     NodeType = "list"     // [a, b]
	NodeMap      NodeType = "map"      // {"k": v}
	NodeGroup    NodeType = "group"    // (a, b)
	NodeBlock    NodeType = "block"    // @{a; b}
	NodeTemplate NodeType = "template" // `text $path`
	NodePath     NodeType = "path"     // $target.x[0][]
	NodeUnary    NodeType = "unary"    // -a, !a, a!
	NodeBinary   NodeType = "binary"   // a + b
	NodeName     NodeType = "name"     // x, x(arg)
	NodeCall     NodeType = "call"     // f(a, b)
)

// StepKind identifies a JSON-path step.
type StepKind uint8

const (
	StepRoot     StepKind = iota // $.
	StepProperty                 // .name
	StepIndex                    // [i]
	StepAll                      // []
	StepFilter                   // [@{...}]
)

// PathStep is one accessor of a JSON path.
type PathStep struct {
	Kind     StepKind
	Property string
	Index    int
	Filter   *Block
}

// ASTNode represents a node in the Abstract Syntax Tree.
type ASTNode struct {
	Type     NodeType
	Value    Value // NodeLiteral
	Name     string
	Position int

	// Operator nodes
	Operator string
	Level    int
	Postfix  bool

	// Relations
	LHS       *ASTNode
	RHS       *ASTNode
	Arguments []*ASTNode // call/name arguments, list items, map values, template parts
	Keys      []string   // map literal keys, parallel to Arguments
	HasArgs   bool       // NodeName: called with (...)
	Block     *Block     // NodeBlock

	// JSON path
	Target    string
	HasTarget bool
	Steps     []PathStep
}

// Block is the compiled statement list of a @{...} block. Blocks are shared
// by reference between the AST and the Expression values that capture them.
type Block struct {
	Statements []*ASTNode
}

// String dumps the block as @{s1;s2}.
func (b *Block) String() string {
	var sb strings.Builder
	sb.WriteString("@{")
	for i, s := range b.Statements {
		if i > 0 {
			sb.WriteByte(';')
		}
		s.dump(&sb)
	}
	sb.WriteByte('}')
	return sb.String()
}

// NewASTNode creates a new AST node of the specified type.
func NewASTNode(nodeType NodeType, position int) *ASTNode {
	return &ASTNode{
		Type:     nodeType,
		Position: position,
	}
}

// arenaChunkSize is the number of ASTNode values pre-allocated per arena chunk.
const arenaChunkSize = 64

// NodeArena is a bump-pointer allocator for ASTNode values. The arena must
// stay reachable as long as any node it returned is; the parser attaches it
// to the compiled [Expression].
//
// NodeArena is NOT thread-safe. Each parser owns its own arena.
type NodeArena struct {
	chunks [][]ASTNode
	pos    int
}

// NewNodeArena allocates an arena pre-warmed with one initial chunk.
func NewNodeArena() *NodeArena {
	return &NodeArena{
		chunks: [][]ASTNode{make([]ASTNode, arenaChunkSize)},
	}
}

// Alloc returns a pointer to a zero-valued ASTNode inside the arena with
// Type and Position set.
func (a *NodeArena) Alloc(nodeType NodeType, position int) *ASTNode {
	if a.pos >= arenaChunkSize {
		a.chunks = append(a.chunks, make([]ASTNode, arenaChunkSize))
		a.pos = 0
	}
	n := &a.chunks[len(a.chunks)-1][a.pos]
	a.pos++
	n.Type = nodeType
	n.Position = position
	return n
}

// Len returns the number of nodes allocated so far.
func (a *NodeArena) Len() int {
	return (len(a.chunks)-1)*arenaChunkSize + a.pos
}

// String returns the canonical dump of the subtree. Two trees with the same
// dump evaluate identically.
func (n *ASTNode) String() string {
	var sb strings.Builder
	n.dump(&sb)
	return sb.String()
}

func (n *ASTNode) dump(sb *strings.Builder) {
	if n == nil {
		sb.WriteString("()")
		return
	}
	switch n.Type {
	case NodeLiteral:
		sb.WriteString(n.Value.String())
	case NodeList:
		sb.WriteByte('[')
		dumpList(sb, n.Arguments, ",")
		sb.WriteByte(']')
	case NodeGroup:
		sb.WriteByte('(')
		dumpList(sb, n.Arguments, ",")
		sb.WriteByte(')')
	case NodeMap:
		sb.WriteByte('{')
		for i, k := range n.Keys {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(Quote(k))
			sb.WriteByte(':')
			n.Arguments[i].dump(sb)
		}
		sb.WriteByte('}')
	case NodeBlock:
		sb.WriteString(n.Block.String())
	case NodeTemplate:
		sb.WriteByte('`')
		for _, p := range n.Arguments {
			if p.Type == NodeLiteral && p.Value.RawKind() == KindString {
				s, _ := p.Value.AsString()
				sb.WriteString(s)
				continue
			}
			p.dump(sb)
		}
		sb.WriteByte('`')
	case NodePath:
		sb.WriteString("${")
		if n.HasTarget {
			sb.WriteString(Quote(n.Target))
		}
		for _, s := range n.Steps {
			switch s.Kind {
			case StepRoot:
				sb.WriteByte('.')
			case StepProperty:
				sb.WriteByte('.')
				sb.WriteString(Quote(s.Property))
			case StepIndex:
				sb.WriteString("[" + strconv.Itoa(s.Index) + "]")
			case StepAll:
				sb.WriteString("[]")
			case StepFilter:
				sb.WriteString("[" + s.Filter.String() + "]")
			}
		}
		sb.WriteByte('}')
	case NodeUnary:
		sb.WriteByte('(')
		if n.Postfix {
			n.LHS.dump(sb)
			sb.WriteString(n.Operator)
		} else {
			sb.WriteString(n.Operator)
			n.LHS.dump(sb)
		}
		sb.WriteByte(')')
	case NodeBinary:
		sb.WriteByte('(')
		n.LHS.dump(sb)
		sb.WriteString(n.Operator)
		n.RHS.dump(sb)
		sb.WriteByte(')')
	case NodeName:
		sb.WriteString(n.Name)
		if n.HasArgs {
			sb.WriteByte('(')
			dumpList(sb, n.Arguments, ",")
			sb.WriteByte(')')
		}
	case NodeCall:
		sb.WriteString(n.Name)
		sb.WriteByte('(')
		dumpList(sb, n.Arguments, ",")
		sb.WriteByte(')')
	default:
		sb.WriteString(string(n.Type))
	}
}

func dumpList(sb *strings.Builder, nodes []*ASTNode, sep string) {
	for i, a := range nodes {
		if i > 0 {
			sb.WriteString(sep)
		}
		a.dump(sb)
	}
}
