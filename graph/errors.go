package graph

import (
	"fmt"
	"strings"
)

// ParamError decorates an operator attribute-parsing failure with the
// context needed to diagnose it: the operator, the node's display name and
// the complete attribute dictionary. The rendered message is the externally
// observable diagnostic and lists every key/value pair in insertion order.
type ParamError struct {
	// Op is the operator name.
	Op string
	// Node is the display name of the node being constructed.
	Node string
	// Dict is the full attribute dictionary of the node.
	Dict *AttrDict
	// Err is the underlying parse error.
	Err error
}

func (e *ParamError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s, in operator %s(name=%q", e.Err, e.Op, e.Node)
	for _, key := range e.Dict.Keys() {
		value, _ := e.Dict.Get(key)
		fmt.Fprintf(&b, ", %s=%q", key, value)
	}
	b.WriteString(")")
	return b.String()
}

func (e *ParamError) Unwrap() error { return e.Err }
