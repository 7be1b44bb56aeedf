package mathexpr

import (
	"strconv"
	"strings"
)

// node is a node in the abstract syntax tree of an expression.
type node struct {
	kind nodeKind

	// name is the literal text of a number, the identifier of a name or
	// function, the base of an attribute, or the source text of an
	// unsupported construct.
	name string
	// attr is the attribute of an attribute reference.
	attr string

	left  *node
	right *node
}

type nodeKind int8

const (
	nodeNone nodeKind = iota

	nodeNum  // push num
	nodeName // push lookup(name)
	nodeAttr // push lookup(name.attr)

	nodeCall // name is function to call, right is link to nodeArg unless niladic
	nodeArg  // eval left, right is link to next arg

	nodeNeg      // evaluate left, then negate
	nodeAdd      // evaluate left, add right
	nodeSub      // evaluate left, sub right
	nodeMul      // evaluate left, mul right
	nodeDiv      // evaluate left, div by right
	nodeFloorDiv // evaluate left, floor div by right
	nodeMod      // evaluate left, mod by right
	nodePow      // evaluate left, exp by right
	nodeXor      // evaluate left, xor right

	// nodeUnsupported is syntax that parses but has no meaning, e.g. a string
	// literal or a.b.c. name holds the operator or literal text, or one of
	// the shape names below. Its operands, if any, are in left and right so
	// that the tree still prints.
	nodeUnsupported
)

// Names of unsupported nodes that are not operators or literals.
const (
	// callText is a call of something other than a function name, e.g.
	// (x)(y). left is the callee and right is the argument list.
	callText = "()"
	// attrText is an attribute of something other than a name, e.g. a.b.c.
	// left is the object.
	attrText = "."
	// indexText is a subscript. left is the object and right is the index.
	indexText = "[]"
	// tupleText is a tuple. right is the element list.
	tupleText = "(,)"
	// listText is a list. right is the element list.
	listText = "[,]"
	// condText is x if c else y. left is the body, and right is a list of the
	// condition and the else branch.
	condText = "if"
)

var nodeKindNames = [...]string{
	nodeNone:        "None",
	nodeNum:         "Num",
	nodeName:        "Name",
	nodeAttr:        "Attr",
	nodeCall:        "Call",
	nodeArg:         "Arg",
	nodeNeg:         "Neg",
	nodeAdd:         "Add",
	nodeSub:         "Sub",
	nodeMul:         "Mul",
	nodeDiv:         "Div",
	nodeFloorDiv:    "FloorDiv",
	nodeMod:         "Mod",
	nodePow:         "Pow",
	nodeXor:         "Xor",
	nodeUnsupported: "Unsupported",
}

func (k nodeKind) String() string {
	if k < 0 || int(k) >= len(nodeKindNames) {
		return "nodeKind(" + strconv.Itoa(int(k)) + ")"
	}
	return nodeKindNames[k]
}

// binopText is the operator text for each binary node kind.
var binopText = [...]string{
	nodeAdd:      " + ",
	nodeSub:      " - ",
	nodeMul:      " * ",
	nodeDiv:      " / ",
	nodeFloorDiv: " // ",
	nodeMod:      " % ",
	nodePow:      " ** ",
	nodeXor:      " ^ ",
}

func (n *node) String() string {
	var b strings.Builder
	n.fmt(&b)
	return b.String()
}

// fmt writes the node fully parenthesized, so that the result parses back to
// the same tree.
func (n *node) fmt(b *strings.Builder) {
	b.WriteByte('(')
	defer b.WriteByte(')')
	switch n.kind {
	case nodeNone:
		// Invalid nodes use invalid characters.
		b.WriteByte('$')
		if n.left != nil {
			n.left.fmt(b)
		}
		b.WriteByte('#')
		if n.right != nil {
			n.right.fmt(b)
		}
		b.WriteByte('$')
	case nodeNum, nodeName:
		b.WriteString(n.name)
	case nodeAttr:
		b.WriteString(n.name)
		b.WriteByte('.')
		b.WriteString(n.attr)
	case nodeCall:
		b.WriteString(n.name)
		n.fmtargs(b)
	case nodeArg:
		// Args usually only appear inside calls, which are handled by fmtargs.
		b.WriteByte(':')
		n.left.fmt(b)
		if n.right != nil {
			n.right.fmt(b)
		}
	case nodeNeg:
		b.WriteByte('-')
		n.left.fmt(b)
	case nodeAdd, nodeSub, nodeMul, nodeDiv, nodeFloorDiv, nodeMod, nodePow, nodeXor:
		n.left.fmt(b)
		b.WriteString(binopText[n.kind])
		n.right.fmt(b)
	case nodeUnsupported:
		switch {
		case n.name == callText:
			n.left.fmt(b)
			n.fmtargs(b)
		case n.name == attrText:
			n.left.fmt(b)
			b.WriteByte('.')
			b.WriteString(n.attr)
		case n.name == indexText:
			n.left.fmt(b)
			b.WriteByte('[')
			n.right.fmt(b)
			b.WriteByte(']')
		case n.name == tupleText:
			if n.right != nil {
				n.right.fmtlist(b)
				b.WriteByte(',')
			}
		case n.name == listText:
			b.WriteByte('[')
			n.right.fmtlist(b)
			b.WriteByte(']')
		case n.name == condText:
			n.left.fmt(b)
			b.WriteString(" if ")
			n.right.left.fmt(b)
			b.WriteString(" else ")
			n.right.right.left.fmt(b)
		case n.left != nil && n.right != nil:
			n.left.fmt(b)
			b.WriteString(" " + n.name + " ")
			n.right.fmt(b)
		case n.left != nil:
			b.WriteString(n.name)
			n.left.fmt(b)
		default:
			b.WriteString(n.name)
		}
	default:
		panic("mathexpr: invalid node kind " + n.kind.String() + " after writing " + b.String())
	}
}

func (n *node) fmtargs(b *strings.Builder) {
	b.WriteByte('(')
	n.right.fmtlist(b)
	b.WriteByte(')')
}

// fmtlist writes the elements of an argument list separated by commas.
func (n *node) fmtlist(b *strings.Builder) {
	if n == nil {
		return
	}
	n.left.fmt(b)
	for n.right != nil {
		n = n.right
		b.WriteString(", ")
		n.left.fmt(b)
	}
}

// args returns the number of arguments in a call node.
func (n *node) args() int {
	k := 0
	for l := n.right; l != nil; l = l.right {
		k++
	}
	return k
}
