package types

// NodeType identifies the shape of an ASTNode. ObjectQL's grammar (spec §6.1)
// produces a small, closed set of node shapes; a single struct with a type
// tag plays the role of the sum types described in spec §9 ("AST as sum
// types ... a tagged variants with pattern matching on node kind; no
// inheritance hierarchy is needed"), matching how the teacher represents its
// own (much larger) AST.
type NodeType string

const (
	// Predication
	NodeAnd       NodeType = "and"
	NodeOr        NodeType = "or"
	NodeBetween   NodeType = "between"
	NodeIn        NodeType = "in"
	NodeRelational NodeType = "relational"
	NodeTextMatch NodeType = "textMatch"
	NodeBoolLit   NodeType = "boolLit"
	NodeCall      NodeType = "call"

	// Scalar expressions
	NodeTextLit   NodeType = "textLit"
	NodeIdentifier NodeType = "identifier"
	NodeNull      NodeType = "null"
	NodeIntLit    NodeType = "intLit"
	NodeFloatLit  NodeType = "floatLit"
	NodePower     NodeType = "power"
	NodeArith     NodeType = "arith"
	NodeBoolCompare NodeType = "boolCompare"
)

// PathSegment is one step of an identifier path (spec §3 "Identifier path").
// A segment names a field; HasIndex additionally selects an element of the
// list found at that field, either by a literal, non-negative index or by an
// instance tag reserved for host resolution (spec §9).
type PathSegment struct {
	Name     string
	HasIndex bool
	Index    int    // valid when HasIndex && Tag == ""
	Tag      string // valid when HasIndex && Tag != ""; the "@name" form
}

// Path is a fully parsed identifier path.
type Path struct {
	Segments []PathSegment
	Source   string // original text, for error messages
}

// ASTNode is a single node of the query's abstract syntax tree, built by the
// parser and read-only for the rest of the query's lifetime (spec §3
// invariant 3).
type ASTNode struct {
	Type     NodeType
	Position int

	// Literal payloads.
	BoolValue   bool
	IntValue    int64
	FloatValue  float64
	StringValue string
	Path        *Path

	// Operator / function identity.
	Op       string // relational, arithmetic and text-match operator spelling
	Negated  bool   // IN vs NOT IN
	FuncName string

	// Children. Which fields are populated depends on Type:
	//   NodeAnd/NodeOr:        LHS, RHS (Predication)
	//   NodeBetween:           Val, Lo, Hi
	//   NodeIn:                LHS, List (literal form) or RHSPath (identifier form)
	//   NodeRelational:        LHS, RHS
	//   NodeTextMatch:         LHS, RHS
	//   NodeCall:               Args
	//   NodePower:             LHS (base), RHS (exponent) -- both literal
	//   NodeArith:             LHS, RHS
	//   NodeBoolCompare:       LHS, RHS
	LHS     *ASTNode
	RHS     *ASTNode
	Val     *ASTNode
	Lo      *ASTNode
	Hi      *ASTNode
	List    []*ASTNode
	RHSPath *ASTNode // NodeIdentifier node, used by the identifier form of IN
	Args    []*ASTNode
}

// String returns the node's type tag, useful in error messages and tests.
func (n *ASTNode) String() string {
	if n == nil {
		return "<nil>"
	}
	return string(n.Type)
}

// IsUntyped reports whether n's evaluated type is only known dynamically
// (an identifier path or function call result), as opposed to a literal or
// operator node whose result type the grammar fixes. The parser uses this
// to accept a bare identifier or call as a condition on its own, leaving the
// check that it yields a boolean to evaluation time.
func (n *ASTNode) IsUntyped() bool {
	return n.Type == NodeIdentifier || n.Type == NodeCall
}
