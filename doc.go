// Package mathexpr evaluates small arithmetic expressions for node-graph
// hosts.
//
// The syntax is a subset of Python expressions: numbers, the operators
// + - * / // % ** and ^ (integer exclusive-or), unary minus, parentheses,
// calls to a fixed set of functions, and names. The names a, b, and c refer
// to values bound in the evaluation context, which may be numbers or sized
// objects such as images and latents. A sized object must be referenced
// through its geometry, as in "a.width * 2". Any other dotted name, such as
// "KSampler.steps", is a widget reference that the context's WidgetResolver
// looks up in the host's node graph. Other Python expression forms, like
// comparisons, conditionals, and lists, parse but fail to evaluate with a type
// error.
//
// Every evaluation produces both a truncated integer and a float. Errors are
// classified by KindOf into syntax, name, type, and arithmetic errors.
package mathexpr
