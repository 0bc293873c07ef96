package ir

import (
	"fmt"
	"sort"

	"github.com/JesseCoretta/go-asn1kit/ast"
	"github.com/JesseCoretta/go-asn1kit/value"
)

/*
preprocess.go implements the pre-processor steps spec.md §4.2 lists,
with all per-call state held in an explicit *preprocessContext (the
arena, the module set, collected CLASS and value assignments, and the
compile memo) in place of package-level mutable state — mirroring how
the teacher keeps per-call state in a struct (Options) rather than
globals wherever a call's behavior depends on more than its immediate
arguments.

Compile runs once per module set, in order: resolveImports,
flattenClasses, collectValues, then the type compiler over every type
assignment, and finally assignTags. Parameter substitution and
COMPONENTS OF splicing happen inline while types are compiled, and
DEFAULT values are converted when a component list is compiled.
assignTags updates the already-built Type nodes in place.
*/

type preprocessContext struct {
	arena   *Arena
	modules map[string]*ast.Module

	// classes and values hold the CLASS and value assignments collected
	// before any ir.Type is built (Types are built lazily, memoized in
	// pending/resolved).
	classes map[string]*ast.ClassAssignment
	values  map[string]ast.Value

	pending  map[string]bool // names currently being compiled, cycle guard
	resolved map[string]TypeRef
}

// Compile runs the full pre-processor + type-compiler pipeline over a
// parsed module set and returns the finished, immutable Graph
// (spec.md §3.5, §4.2, §4.3).
func Compile(mods []*ast.Module) (*Graph, error) {
	ctx := &preprocessContext{
		arena:    NewArena(),
		modules:  make(map[string]*ast.Module),
		classes:  make(map[string]*ast.ClassAssignment),
		values:   make(map[string]ast.Value),
		pending:  make(map[string]bool),
		resolved: make(map[string]TypeRef),
	}

	for _, m := range mods {
		ctx.modules[m.Name] = m
	}

	if err := ctx.resolveImports(); err != nil {
		return nil, err
	}
	ctx.flattenClasses()
	ctx.collectValues()

	root := make(map[string]TypeRef)
	for _, m := range mods {
		for _, a := range m.Assignments {
			if a.Type == nil {
				continue
			}
			qname := m.Name + "." + a.Type.Name
			ref, err := ctx.compileTypeAssignment(m, a.Type)
			if err != nil {
				return nil, &CompileError{Module: m.Name, Symbol: a.Type.Name, Message: err.Error()}
			}
			ctx.arena.Bind(qname, ref)
			root[a.Type.Name] = ref
			root[qname] = ref
		}
	}

	if err := ctx.assignTags(root); err != nil {
		return nil, err
	}

	return &Graph{Arena: ctx.arena, Root: root}, nil
}

// CompileError mirrors the root package's CompileError shape so
// package ir stays import-free of asn1kit (avoiding a cycle, since
// asn1kit's codec dispatch imports ir).
type CompileError struct {
	Module  string
	Symbol  string
	Message string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Module, e.Symbol, e.Message)
}

// resolveImports (step 1) verifies every imported symbol is exported
// (or export-all) by its donor module. It does not copy definitions:
// references are resolved lazily by qualifying unqualified names
// against the importing module's import list when compileTypeRef
// can't find a bare name in the current module.
func (ctx *preprocessContext) resolveImports() error {
	for _, m := range ctx.modules {
		for _, imp := range m.Imports {
			donor, ok := ctx.modules[imp.Module]
			if !ok {
				return &CompileError{Module: m.Name, Message: "import from unknown module " + imp.Module}
			}
			for _, sym := range imp.Symbols {
				if !moduleExports(donor, sym) {
					return &CompileError{Module: m.Name, Symbol: sym, Message: "not exported by " + imp.Module}
				}
			}
		}
	}
	return nil
}

func moduleExports(m *ast.Module, sym string) bool {
	if m.Exports == nil {
		return true // export-all, the X.680 default
	}
	for _, e := range m.Exports {
		if e == sym {
			return true
		}
	}
	return false
}

// flattenClasses (step 2) indexes every CLASS assignment so object-set
// and "ClassName.&field" references resolve during type compilation.
// Full WITH SYNTAX object parsing is out of this toolkit's scope
// beyond recognizing and indexing the class shape (spec.md's ANY
// DEFINED BY / open-type resolution only needs the field list, not a
// parsed object registry).
func (ctx *preprocessContext) flattenClasses() {
	for _, m := range ctx.modules {
		for _, a := range m.Assignments {
			if a.Class != nil {
				ctx.classes[m.Name+"."+a.Class.Name] = a.Class
				ctx.classes[a.Class.Name] = a.Class
			}
		}
	}
}

func (ctx *preprocessContext) collectValues() {
	for _, m := range ctx.modules {
		for _, a := range m.Assignments {
			if a.Value != nil {
				ctx.values[m.Name+"."+a.Value.Name] = a.Value.Val
				ctx.values[a.Value.Name] = a.Value.Val
			}
		}
	}
}

// compileTypeAssignment compiles one module-level type assignment,
// substituting actual parameters (step 3) if the reference site
// supplied any, and splicing COMPONENTS OF (step 5) inline.
func (ctx *preprocessContext) compileTypeAssignment(m *ast.Module, ta *ast.TypeAssignment) (TypeRef, error) {
	qname := m.Name + "." + ta.Name
	if ref, ok := ctx.resolved[qname]; ok {
		return ref, nil
	}
	if ctx.pending[qname] {
		// Self-referential type assignment (e.g. "Node ::= SEQUENCE {
		// next Node OPTIONAL }"): allocate the arena slot now so the
		// recursive reference has somewhere to point, and finish
		// populating it below. This is exactly the dense-integer-id
		// arena's reason for existing (spec.md §9).
		if ref, ok := ctx.arena.Lookup(qname); ok {
			return ref, nil
		}
	}
	ctx.pending[qname] = true
	defer delete(ctx.pending, qname)

	placeholder := ctx.arena.New(&Type{Name: qname})
	ctx.arena.Bind(qname, placeholder)

	t, err := ctx.compileType(m, ta.Type, nil)
	if err != nil {
		return RefInvalid, err
	}
	*ctx.arena.Get(placeholder) = *t
	ctx.arena.Get(placeholder).Self = placeholder
	ctx.resolved[qname] = placeholder
	return placeholder, nil
}

// compileType (the bulk of step 3/4/5) lowers one ast.Type into an
// ir.Type, recursing into components. params substitutes formal
// parameter names with actual ast.Type arguments, for a
// parameterized-type instantiation site.
func (ctx *preprocessContext) compileType(m *ast.Module, t ast.Type, params map[string]ast.Type) (*Type, error) {
	if params != nil {
		if t.Kind == ast.KindReference {
			if actual, ok := params[t.Ref]; ok {
				t = actual
			}
		}
	}

	out := &Type{}
	switch t.Kind {
	case ast.KindBoolean:
		out.Kind = KindBoolean
	case ast.KindInteger:
		out.Kind = KindInteger
		out.Constraints = enumConstraint(t.Enum)
	case ast.KindEnumerated:
		out.Kind = KindEnumerated
		out.Constraints = enumConstraint(t.Enum)
	case ast.KindReal:
		out.Kind = KindReal
	case ast.KindNull:
		out.Kind = KindNull
	case ast.KindBitString:
		out.Kind = KindBitString
	case ast.KindOctetString:
		out.Kind = KindOctetString
	case ast.KindOID:
		out.Kind = KindOID
	case ast.KindRelativeOID:
		out.Kind = KindRelativeOID
	case ast.KindUTF8String:
		out.Kind, out.Alphabet = KindCharString, AlphabetUTF8
	case ast.KindNumericString:
		out.Kind, out.Alphabet = KindCharString, AlphabetNumeric
	case ast.KindPrintableString:
		out.Kind, out.Alphabet = KindCharString, AlphabetPrintable
	case ast.KindT61String:
		out.Kind, out.Alphabet = KindCharString, AlphabetT61
	case ast.KindVideotexString:
		out.Kind, out.Alphabet = KindCharString, AlphabetGeneral
	case ast.KindIA5String:
		out.Kind, out.Alphabet = KindCharString, AlphabetIA5
	case ast.KindGraphicString:
		out.Kind, out.Alphabet = KindCharString, AlphabetGraphic
	case ast.KindVisibleString:
		out.Kind, out.Alphabet = KindCharString, AlphabetVisible
	case ast.KindGeneralString:
		out.Kind, out.Alphabet = KindCharString, AlphabetGeneral
	case ast.KindUniversalString:
		out.Kind, out.Alphabet = KindCharString, AlphabetUniversal
	case ast.KindBMPString:
		out.Kind, out.Alphabet = KindCharString, AlphabetBMP
	case ast.KindCharacterString, ast.KindObjectDescriptor:
		out.Kind, out.Alphabet = KindCharString, AlphabetUTF8
	case ast.KindUTCTime:
		out.Kind = KindUTCTime
	case ast.KindGeneralizedTime:
		out.Kind = KindGeneralizedTime
	case ast.KindAny, ast.KindAnyDefinedBy, ast.KindExternal, ast.KindEmbeddedPDV:
		out.Kind = KindAny
	case ast.KindSequenceOf, ast.KindSetOf:
		if t.Kind == ast.KindSequenceOf {
			out.Kind = KindSequenceOf
		} else {
			out.Kind = KindSetOf
		}
		elemT, err := ctx.compileType(m, *t.Component, params)
		if err != nil {
			return nil, err
		}
		out.Element = ctx.arena.New(elemT)
	case ast.KindSequence, ast.KindSet, ast.KindChoice:
		switch t.Kind {
		case ast.KindSequence:
			out.Kind = KindSequence
		case ast.KindSet:
			out.Kind = KindSet
		default:
			out.Kind = KindChoice
		}
		comps, err := ctx.compileMembers(m, t.Members, params)
		if err != nil {
			return nil, err
		}
		out.Components = comps
		out.Extensible = hasExtMarker(t.Members)
	case ast.KindReference:
		ref, err := ctx.compileReference(m, t, params)
		if err != nil {
			return nil, err
		}
		out.Kind = KindTaggedAlias
		out.Aliased = ref
	case ast.KindObjectClassField:
		out.Kind = KindAny
	default:
		return nil, fmt.Errorf("unsupported type production (kind %d)", t.Kind)
	}

	if t.Tag != nil {
		out.Tag = TagSpec{
			Number:   t.Tag.Number,
			Explicit: t.Tag.Explicit,
			Implicit: t.Tag.Implicit,
		}
		switch t.Tag.Class {
		case "APPLICATION":
			out.Tag.Class = ClassApplication
		case "PRIVATE":
			out.Tag.Class = ClassPrivate
		case "UNIVERSAL":
			out.Tag.Class = ClassUniversal
		default:
			out.Tag.Class = ClassContextSpecific
		}
	}

	for _, c := range t.Constraints {
		out.Constraints = Intersect(out.Constraints, compileConstraint(c))
	}

	return out, nil
}

func (ctx *preprocessContext) compileReference(m *ast.Module, t ast.Type, params map[string]ast.Type) (TypeRef, error) {
	if params != nil {
		if actual, ok := params[t.Ref]; ok {
			return ctx.compileAndStore(m, actual, params)
		}
	}

	// parameterized-type instantiation site: "T{INTEGER}"
	if len(t.Params) > 0 {
		if assignment, mod := ctx.findTypeAssignment(m, t.Ref); assignment != nil {
			bound := make(map[string]ast.Type)
			for i, p := range assignment.Params {
				if i < len(t.Params) {
					bound[p] = t.Params[i]
				}
			}
			return ctx.compileAndStore(mod, assignment.Type, bound)
		}
	}

	if assignment, mod := ctx.findTypeAssignment(m, t.Ref); assignment != nil {
		return ctx.compileTypeAssignment(mod, assignment)
	}

	if _, ok := ctx.classes[t.Ref]; ok {
		return ctx.compileAndStore(m, ast.Type{Kind: ast.KindAny}, nil)
	}

	return RefInvalid, fmt.Errorf("undefined type reference %q", t.Ref)
}

func (ctx *preprocessContext) compileAndStore(m *ast.Module, t ast.Type, params map[string]ast.Type) (TypeRef, error) {
	out, err := ctx.compileType(m, t, params)
	if err != nil {
		return RefInvalid, err
	}
	return ctx.arena.New(out), nil
}

func (ctx *preprocessContext) findTypeAssignment(m *ast.Module, name string) (*ast.TypeAssignment, *ast.Module) {
	for _, a := range m.Assignments {
		if a.Type != nil && a.Type.Name == name {
			return a.Type, m
		}
	}
	for _, imp := range m.Imports {
		for _, sym := range imp.Symbols {
			if sym == name {
				donor, ok := ctx.modules[imp.Module]
				if !ok {
					return nil, nil
				}
				return ctx.findTypeAssignment(donor, name)
			}
		}
	}
	return nil, nil
}

// compileMembers (also handling step 5, spliceComponentsOf) lowers a
// SEQUENCE/SET/CHOICE member list, inlining each "COMPONENTS OF T"
// placeholder with T's own component list.
func (ctx *preprocessContext) compileMembers(m *ast.Module, members []ast.Member, params map[string]ast.Type) ([]Component, error) {
	var out []Component
	for _, mem := range members {
		if mem.ExtMarker {
			continue // the marker itself carries no component; ExtGroup on neighbors records extensibility
		}
		if mem.ComponentsOf != nil {
			ref, err := ctx.compileReference(m, *mem.ComponentsOf, params)
			if err != nil {
				return nil, err
			}
			srcType := ctx.arena.Get(ref)
			if srcType.Kind == KindTaggedAlias {
				srcType = ctx.arena.Get(srcType.Aliased)
			}
			out = append(out, srcType.Components...)
			continue
		}

		ct, err := ctx.compileType(m, mem.Type, params)
		if err != nil {
			return nil, err
		}
		ref := ctx.arena.New(ct)

		comp := Component{
			Name:     mem.Name,
			Type:     ref,
			Optional: mem.Optional,
			Tag:      ct.Tag,
			ExtGroup: mem.ExtGroupID,
		}
		if mem.Default != nil {
			dv := astValueToRuntime(*mem.Default)
			comp.Default = &dv
		}
		out = append(out, comp)
	}
	return out, nil
}

// hasExtMarker reports whether a member list carries the "..."
// extension marker, i.e. the type it belongs to is extensible
// (spec.md §3.1).
func hasExtMarker(members []ast.Member) bool {
	for _, mem := range members {
		if mem.ExtMarker {
			return true
		}
	}
	return false
}

func enumConstraint(nn []ast.NamedNumber) *Constraint {
	if len(nn) == 0 {
		return nil
	}
	vals := make([]value.Value, 0, len(nn))
	for _, n := range nn {
		vals = append(vals, value.Int(int64(n.Number)))
	}
	return &Constraint{Kind: ConstraintValueSet, Values: vals}
}

func compileConstraint(c ast.Constraint) *Constraint {
	switch c.Kind {
	case ast.ConstraintKindValueRange, ast.ConstraintKindSize:
		out := &Constraint{Extensible: c.Extensible}
		if c.Kind == ast.ConstraintKindValueRange {
			out.Kind = ConstraintValueRange
		} else {
			out.Kind = ConstraintSize
		}
		if c.Lower == nil || c.Upper == nil || c.Lower.Min || c.Upper.Max {
			out.Unbounded = true
		}
		if c.Lower != nil && !c.Lower.Min {
			out.Lower = c.Lower.Value
		}
		if c.Upper != nil && !c.Upper.Max {
			out.Upper = c.Upper.Value
		}
		return out
	case ast.ConstraintKindValueSet:
		vals := make([]value.Value, 0, len(c.Values))
		for _, v := range c.Values {
			vals = append(vals, astValueToRuntime(v))
		}
		return &Constraint{Kind: ConstraintValueSet, Values: vals}
	case ast.ConstraintKindAlphabet:
		return &Constraint{Kind: ConstraintAlphabet, Alphabet: c.Alphabet}
	case ast.ConstraintKindTable:
		return &Constraint{Kind: ConstraintTable, TableRef: c.TableRef}
	}
	return nil
}

func astValueToRuntime(v ast.Value) value.Value {
	switch v.Kind {
	case ast.ValBoolean:
		return value.Bool(v.Bool)
	case ast.ValInteger:
		return value.Int(v.Int)
	case ast.ValCString:
		return value.Text(v.Text)
	case ast.ValNull:
		return value.Null()
	case ast.ValList:
		out := make([]value.Value, 0, len(v.List))
		for _, e := range v.List {
			out = append(out, astValueToRuntime(e))
		}
		return value.List(out...)
	}
	return value.Null()
}

// sortedComponentNames is a small helper used by the tag-assignment
// pass below to iterate a Type's components in a stable order.
func sortedComponentNames(comps []Component) []string {
	names := make([]string, len(comps))
	for i, c := range comps {
		names[i] = c.Name
	}
	sort.Strings(names)
	return names
}
