// Package buildutil provides helpers for reading and editing keyword
// arguments of buildtools call expressions.
package buildutil

import (
	"github.com/bazelbuild/buildtools/build"
)

// Kwargs returns the keyword arguments of a call in source order.
func Kwargs(call *build.CallExpr) []*build.AssignExpr {
	var out []*build.AssignExpr
	for _, arg := range call.List {
		assign, ok := arg.(*build.AssignExpr)
		if !ok {
			continue
		}
		if _, ok := assign.LHS.(*build.Ident); !ok {
			continue
		}
		out = append(out, assign)
	}
	return out
}

// KwargName returns the identifier on the left-hand side of a keyword argument.
func KwargName(assign *build.AssignExpr) string {
	if lhs, ok := assign.LHS.(*build.Ident); ok {
		return lhs.Name
	}
	return ""
}

// Kwarg returns the keyword argument with the given name, or nil.
func Kwarg(call *build.CallExpr, name string) *build.AssignExpr {
	for _, assign := range Kwargs(call) {
		if KwargName(assign) == name {
			return assign
		}
	}
	return nil
}

// String extracts a string attribute from a function call by name.
// If name is empty and the call has positional arguments, returns the first
// positional string argument.
// Returns empty string if the attribute is not found or not a string.
func String(call *build.CallExpr, name string) string {
	if name == "" && len(call.List) > 0 {
		if str, ok := call.List[0].(*build.StringExpr); ok {
			return str.Value
		}
		return ""
	}

	assign := Kwarg(call, name)
	if assign == nil {
		return ""
	}
	if str, ok := assign.RHS.(*build.StringExpr); ok {
		return str.Value
	}
	return ""
}

// SetString sets the value of a keyword argument to a string literal.
// Returns false if the call has no such argument.
func SetString(call *build.CallExpr, name, value string) bool {
	assign := Kwarg(call, name)
	if assign == nil {
		return false
	}
	assign.RHS = &build.StringExpr{Value: value}
	return true
}

// InsertString inserts name = "value" as the pos-th keyword argument of call.
// Positional arguments keep their place in front of all keyword arguments.
func InsertString(call *build.CallExpr, pos int, name, value string) *build.AssignExpr {
	assign := &build.AssignExpr{
		LHS: &build.Ident{Name: name},
		Op:  "=",
		RHS: &build.StringExpr{Value: value},
	}

	kwargs := Kwargs(call)
	at := len(call.List)
	if pos < len(kwargs) {
		for i, arg := range call.List {
			if arg == kwargs[pos] {
				at = i
				break
			}
		}
	}

	call.List = append(call.List, nil)
	copy(call.List[at+1:], call.List[at:])
	call.List[at] = assign
	return assign
}

// FuncName returns the function name from a CallExpr.
// Returns empty string if the call is not a simple function call
// (e.g., method calls like foo.bar()).
func FuncName(call *build.CallExpr) string {
	if ident, ok := call.X.(*build.Ident); ok {
		return ident.Name
	}
	return ""
}

// IsFuncCall returns true if the call is for the specified function name.
func IsFuncCall(call *build.CallExpr, name string) bool {
	return FuncName(call) == name
}

// Calls returns the top-level calls of f to the named function.
func Calls(f *build.File, name string) []*build.CallExpr {
	var out []*build.CallExpr
	for _, stmt := range f.Stmt {
		if call, ok := stmt.(*build.CallExpr); ok && IsFuncCall(call, name) {
			out = append(out, call)
		}
	}
	return out
}
