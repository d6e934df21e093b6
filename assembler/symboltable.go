package assembler

import "fmt"

// Symbol is one entry of the symbol table: a name, its resolved (or
// placeholder) address, its kind, whether it has been defined yet, and
// whether it was independently declared .entry. IsEntry is tracked apart
// from Kind so a Data symbol can carry both roles without resorting to
// name-based special cases.
type Symbol struct {
	Name    string
	Address int
	Kind    SymbolKind
	Defined bool
	IsEntry bool
}

// SymbolTable is a keyed mapping from label name to Symbol. Insertion
// order is preserved for deterministic iteration (needed for the
// entries file; not required for lookups).
type SymbolTable struct {
	order   []string
	symbols map[string]*Symbol
}

// NewSymbolTable returns an empty table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{symbols: make(map[string]*Symbol)}
}

// Lookup returns the symbol named name, or nil if it doesn't exist.
func (t *SymbolTable) Lookup(name string) *Symbol {
	return t.symbols[name]
}

func (t *SymbolTable) insert(sym *Symbol) {
	t.order = append(t.order, sym.Name)
	t.symbols[sym.Name] = sym
}

// Define records name as defined at address with the given kind,
// following original_source/first_pass.c's define_label: an existing
// undefined placeholder (inserted by an earlier .entry) has its address
// and definedness set, retaining kind Entry rather than being
// downgraded to kind, except that a KindData definition always takes
// kind Data (IsEntry still marks it as an entry, and RelocateData moves
// it); a brand-new name is inserted outright. Redefining
// an already-defined name is a naming error.
func (t *SymbolTable) Define(name string, address int, kind SymbolKind) error {
	if existing := t.Lookup(name); existing != nil {
		if existing.Defined {
			return newDiag(StageFirstPass, CategoryNaming, 0, name, "label already defined")
		}
		existing.Address = address
		if existing.Kind != KindEntry || kind == KindData {
			existing.Kind = kind
		}
		existing.Defined = true
		return nil
	}
	t.insert(&Symbol{Name: name, Address: address, Kind: kind, Defined: true})
	return nil
}

// DeclareExternal inserts name as an undefined, address-0 External
// symbol. Redeclaring an already-defined name as external is an error;
// redeclaring an existing external is a silent no-op, following
// original_source/first_pass.c's .extern handling.
func (t *SymbolTable) DeclareExternal(name string) error {
	existing := t.Lookup(name)
	if existing == nil {
		t.insert(&Symbol{Name: name, Address: 0, Kind: KindExternal})
		return nil
	}
	if existing.Defined {
		return newDiag(StageFirstPass, CategoryNaming, 0, name,
			"cannot declare already-defined label external")
	}
	return nil
}

// DeclareEntry ensures name is marked as an entry, inserting an
// undefined placeholder if it hasn't been seen yet. A Data-kind symbol
// keeps its kind and only gets IsEntry set; any other symbol, defined
// or not, is given kind Entry.
func (t *SymbolTable) DeclareEntry(name string) {
	existing := t.Lookup(name)
	if existing == nil {
		t.insert(&Symbol{Name: name, Kind: KindEntry, IsEntry: true})
		return
	}
	existing.IsEntry = true
	if existing.Kind != KindData {
		existing.Kind = KindEntry
	}
}

// RelocateData adds base to the address of every defined Data-kind
// symbol, placing the data segment immediately above the final code
// size. Called once, after the first pass finishes without error, per
// original_source/first_pass.c's post-loop address += IC step.
func (t *SymbolTable) RelocateData(base int) {
	for _, name := range t.order {
		sym := t.symbols[name]
		if sym.Kind == KindData && sym.Defined {
			sym.Address += base
		}
	}
}

// Entries returns the defined symbols flagged IsEntry, in insertion
// order, for .ent file emission.
func (t *SymbolTable) Entries() []*Symbol {
	var out []*Symbol
	for _, name := range t.order {
		sym := t.symbols[name]
		if sym.IsEntry && sym.Defined {
			out = append(out, sym)
		}
	}
	return out
}

// UndefinedNonExternal returns, in insertion order, the names of symbols
// that are neither defined nor External. Names enter the table only
// through definitions, .extern and .entry, so these are .entry
// placeholders that were never defined. Neither pass calls it: an
// undefined label reference is reported by the second pass when it
// resolves that use.
func (t *SymbolTable) UndefinedNonExternal() []string {
	var out []string
	for _, name := range t.order {
		sym := t.symbols[name]
		if !sym.Defined && sym.Kind != KindExternal {
			out = append(out, name)
		}
	}
	return out
}

// UndefinedEntries returns the names of symbols declared .entry that
// were never defined, in declaration order. Such a symbol is reported
// at the end of the first pass rather than left to the second pass's
// per-use resolution, since an entry with no definition can never
// become valid no matter how the rest of the file resolves.
func (t *SymbolTable) UndefinedEntries() []string {
	var out []string
	for _, name := range t.order {
		sym := t.symbols[name]
		if sym.IsEntry && !sym.Defined {
			out = append(out, name)
		}
	}
	return out
}

func (k SymbolKind) String() string {
	switch k {
	case KindCode:
		return "code"
	case KindData:
		return "data"
	case KindExternal:
		return "external"
	case KindEntry:
		return "entry"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}
