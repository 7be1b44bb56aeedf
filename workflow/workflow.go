// Package workflow resolves widget references like KSampler.steps against the
// workflow and prompt documents of a node graph.
//
// The workflow document lists the nodes of the graph with their ids, types,
// titles, and properties. The prompt document maps node ids to the inputs the
// node was executed with. Both may be JSON or YAML.
package workflow

import (
	"io"
	"math/big"
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/zephyrtronium/mathexpr"
)

// SearchNameProperty is the node property holding the name used to find the
// node in searches. It takes precedence over the node's type.
const SearchNameProperty = "Node name for S&R"

// Workflow is a graph document.
type Workflow struct {
	Nodes []Node `yaml:"nodes"`
}

// Node is a node in a workflow.
type Node struct {
	ID         NodeID         `yaml:"id"`
	Type       string         `yaml:"type"`
	Title      string         `yaml:"title"`
	Properties map[string]any `yaml:"properties"`
}

// NodeID is the id of a node. Workflows store ids as numbers and prompts key
// nodes by the same ids as strings, so both forms decode to the same NodeID.
type NodeID string

func (id *NodeID) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		*id = NodeID(value.Value)
		return nil
	case yaml.AliasNode:
		return id.UnmarshalYAML(value.Alias)
	default:
		return errors.Errorf("workflow: expected scalar node id but found %s", value.ShortTag())
	}
}

// SearchName returns the name that finds n first: its search name property,
// or its type if it has none.
func (n *Node) SearchName() string {
	if s, ok := n.Properties[SearchNameProperty].(string); ok {
		return s
	}
	return n.Type
}

// Prompt maps node ids to their execution inputs.
type Prompt map[string]PromptNode

// PromptNode is the execution record of one node.
type PromptNode struct {
	ClassType string `yaml:"class_type"`
	// Inputs are the node's widget values and links, undecoded so that
	// integers keep their exact values.
	Inputs map[string]yaml.Node `yaml:"inputs"`
}

// document is a workflow, possibly nested under a workflow key as in the
// extra info saved with images.
type document struct {
	Workflow *Workflow `yaml:"workflow"`
	Nodes    []Node    `yaml:"nodes"`
}

// DecodeWorkflow decodes a workflow document. An empty document is a
// workflow with no nodes.
func DecodeWorkflow(r io.Reader) (*Workflow, error) {
	var doc document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrap(err, "decoding workflow")
	}
	if doc.Workflow != nil {
		return doc.Workflow, nil
	}
	return &Workflow{Nodes: doc.Nodes}, nil
}

// DecodePrompt decodes a prompt document. An empty document is an empty
// prompt.
func DecodePrompt(r io.Reader) (Prompt, error) {
	var p Prompt
	if err := yaml.NewDecoder(r).Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrap(err, "decoding prompt")
	}
	if p == nil {
		p = Prompt{}
	}
	return p, nil
}

// Registry resolves widget references. It implements mathexpr.WidgetResolver.
// A Registry is safe for concurrent use.
type Registry struct {
	nodes  []Node
	prompt Prompt
}

var _ mathexpr.WidgetResolver = (*Registry)(nil)

// New creates a registry over a workflow and prompt. Either may be nil.
func New(wf *Workflow, prompt Prompt) *Registry {
	r := Registry{prompt: prompt}
	if wf != nil {
		r.nodes = wf.Nodes
	}
	return &r
}

// Load decodes a workflow and a prompt and creates a registry over them.
// Either reader may be nil.
func Load(workflow, prompt io.Reader) (*Registry, error) {
	var wf *Workflow
	var p Prompt
	var err error
	if workflow != nil {
		if wf, err = DecodeWorkflow(workflow); err != nil {
			return nil, err
		}
	}
	if prompt != nil {
		if p, err = DecodePrompt(prompt); err != nil {
			return nil, err
		}
	}
	return New(wf, p), nil
}

// LoadFiles is like Load, but reads the documents from files. An empty path
// means no document.
func LoadFiles(workflowPath, promptPath string) (*Registry, error) {
	var wf, p io.Reader
	if workflowPath != "" {
		f, err := os.Open(workflowPath)
		if err != nil {
			return nil, errors.Wrap(err, "opening workflow")
		}
		defer f.Close()
		wf = f
	}
	if promptPath != "" {
		f, err := os.Open(promptPath)
		if err != nil {
			return nil, errors.Wrap(err, "opening prompt")
		}
		defer f.Close()
		p = f
	}
	return Load(wf, p)
}

// Find finds the id of the first node in workflow order whose search name or
// title is name. A node's search name is checked before its title.
func (r *Registry) Find(name string) (NodeID, bool) {
	for i := range r.nodes {
		n := &r.nodes[i]
		if n.SearchName() == name {
			return n.ID, true
		}
		if n.Title != "" && n.Title == name {
			return n.ID, true
		}
	}
	return "", false
}

// Widget returns the value of a widget input on the named node. Integer values
// are exact; reals are rounded to float64 precision. Strings holding numbers
// are numbers. Other values, including links to other nodes, are type errors.
func (r *Registry) Widget(node, widget string) (*big.Float, error) {
	ref := node + "." + widget
	id, ok := r.Find(node)
	if !ok {
		return nil, &mathexpr.NameError{Name: ref, Scope: mathexpr.ScopeNode}
	}
	v, ok := r.prompt[string(id)].Inputs[widget]
	if !ok {
		return nil, &mathexpr.NameError{Name: ref, Scope: mathexpr.ScopeWidget}
	}
	return value(ref, &v)
}

// value converts a widget value to a number.
func value(ref string, v *yaml.Node) (*big.Float, error) {
	switch v.Kind {
	case yaml.ScalarNode:
		// ok
	case yaml.AliasNode:
		return value(ref, v.Alias)
	case yaml.SequenceNode:
		return nil, &mathexpr.TypeError{Expr: ref, Reason: "widget " + ref + " is linked to another node"}
	default:
		return nil, &mathexpr.TypeError{Expr: ref, Reason: "widget " + ref + " is not a number"}
	}
	switch v.ShortTag() {
	case "!!int", "!!float", "!!str":
		if x, ok := number(v.Value); ok {
			return x, nil
		}
	}
	return nil, &mathexpr.TypeError{Expr: ref, Reason: "widget " + ref + " is not a number: " + v.Value}
}

// number parses an integer exactly or a real at float64 precision.
func number(s string) (*big.Float, bool) {
	s = strings.TrimSpace(s)
	if i, ok := new(big.Int).SetString(s, 0); ok {
		return new(big.Float).SetInt(i), true
	}
	x, _, err := new(big.Float).SetPrec(mathexpr.DefaultPrec).Parse(s, 10)
	if err != nil {
		return nil, false
	}
	return x, true
}
