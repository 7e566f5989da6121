package compiler

import (
	"fmt"
	"sort"
	"strings"
)

type SymbolKind int

const (
	SymBuiltin SymbolKind = iota
	SymVariable
	SymFunction
	SymParameter
	SymImport
)

func (k SymbolKind) String() string {
	switch k {
	case SymVariable:
		return "variable"
	case SymFunction:
		return "function"
	case SymParameter:
		return "parameter"
	case SymImport:
		return "import"
	}
	return "builtin"
}

type Symbol struct {
	Name   string
	Kind   SymbolKind
	Line   int
	Column int
}

// SymbolTable is a stack of lexical scopes. The bottom scope holds the
// runtime's builtin names, the one above it is the program's global scope.
// Names are unique within one scope; inner scopes may shadow outer ones.
type SymbolTable struct {
	scopes []map[string]Symbol
}

func NewSymbolTable() *SymbolTable {
	builtins := make(map[string]Symbol, len(runtimeBindings))
	for _, name := range runtimeBindings {
		builtins[name] = Symbol{Name: name, Kind: SymBuiltin}
	}
	return &SymbolTable{scopes: []map[string]Symbol{builtins, make(map[string]Symbol)}}
}

func (s *SymbolTable) EnterScope() {
	s.scopes = append(s.scopes, make(map[string]Symbol))
}

func (s *SymbolTable) ExitScope() {
	if len(s.scopes) <= 2 {
		panic("ExitScope called on global scope")
	}
	s.scopes = s.scopes[:len(s.scopes)-1]
}

// WithScope runs fn inside a fresh scope. The scope is popped on every exit
// path, including a panic inside fn.
func (s *SymbolTable) WithScope(fn func()) {
	s.EnterScope()
	defer s.ExitScope()
	fn()
}

// Depth returns the number of user scopes currently open; 1 means global.
func (s *SymbolTable) Depth() int { return len(s.scopes) - 1 }

// Declare adds sym to the innermost scope. If the name is already declared
// there, the existing symbol is returned with ok == false.
func (s *SymbolTable) Declare(sym Symbol) (Symbol, bool) {
	scope := s.scopes[len(s.scopes)-1]
	if prev, exists := scope[sym.Name]; exists {
		return prev, false
	}
	scope[sym.Name] = sym
	return sym, true
}

// Lookup searches the scopes innermost to outermost.
func (s *SymbolTable) Lookup(name string) (Symbol, bool) {
	for i := len(s.scopes) - 1; i >= 0; i-- {
		if sym, ok := s.scopes[i][name]; ok {
			return sym, true
		}
	}
	return Symbol{}, false
}

// Globals returns the program's global symbols sorted by name.
func (s *SymbolTable) Globals() []Symbol {
	out := make([]Symbol, 0, len(s.scopes[1]))
	for _, sym := range s.scopes[1] {
		out = append(out, sym)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *SymbolTable) String() string {
	var sb strings.Builder
	sb.WriteString("Symbol Table:\n")
	for _, sym := range s.Globals() {
		fmt.Fprintf(&sb, "  %-16s %-10s line %d col %d\n", sym.Name, sym.Kind, sym.Line, sym.Column)
	}
	return sb.String()
}
