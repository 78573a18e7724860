// SPDX-License-Identifier: Apache-2.0

package genref

// Wrapper is the capability marker implemented once per struct by the accessor
// generator: it declares that S supports wide-reference projection and names
// the generated wrapper type that implements it. A wrapper is a thin value
// around WideRef[S] whose generated methods compose field access purely from
// Subfield, Read, Write, and IsAlive — no other primitive is needed.
//
// Generated code looks like:
//
//	type NodeRef struct{ raw genref.WideRef[Node] }
//
//	func (r *NodeRef) FromRaw(raw genref.WideRef[Node]) { r.raw = raw }
//	func (r NodeRef) Raw() genref.WideRef[Node]         { return r.raw }
//
//	var nodeValue = genref.FieldOf(func(n *Node) *int { return &n.value })
//
//	func (r NodeRef) Value() int       { return genref.Subfield(r.raw, nodeValue).Read() }
//	func (r NodeRef) SetValue(v int)   { genref.Subfield(r.raw, nodeValue).Write(v) }
type Wrapper[S any] interface {
	FromRaw(WideRef[S])
	Raw() WideRef[S]
}

// Wrap builds the generated wrapper W around a wide reference. The reference
// may be dead; the wrapper's accessors fail at use time like any other access.
func Wrap[S, W any, PW interface {
	*W
	Wrapper[S]
}](r WideRef[S]) W {
	var w W
	PW(&w).FromRaw(r)
	return w
}

// WrapRef is Wrap for a narrow reference.
func WrapRef[S, W any, PW interface {
	*W
	Wrapper[S]
}](r Ref[S]) W {
	return Wrap[S, W, PW](r.Wide())
}
