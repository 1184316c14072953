package fact

import "sort"

// Database is the monotonically growing fact store: a mapping from
// address to (kind -> fact), with a secondary kind-to-addresses index
// that is always kept consistent with the primary store.
type Database struct {
	byAddress map[Address]map[Kind]Fact
	byKind    map[Kind]map[Address]bool
}

// NewDatabase creates an empty fact database.
func NewDatabase() *Database {
	return &Database{
		byAddress: make(map[Address]map[Kind]Fact),
		byKind:    make(map[Kind]map[Address]bool),
	}
}

func (db *Database) record(addr Address, f Fact) {
	if db.byAddress[addr] == nil {
		db.byAddress[addr] = make(map[Kind]Fact)
	}
	db.byAddress[addr][f.Kind()] = f
	if db.byKind[f.Kind()] == nil {
		db.byKind[f.Kind()] = make(map[Address]bool)
	}
	db.byKind[f.Kind()][addr] = true
}

// Get returns the fact of the given kind at addr, if any.
func (db *Database) Get(addr Address, kind Kind) (Fact, bool) {
	facts, ok := db.byAddress[addr]
	if !ok {
		return nil, false
	}
	f, ok := facts[kind]
	return f, ok
}

// InsertOnce inserts f at (addr, f.Kind()) only if no fact of that kind
// exists there yet; it never overwrites an existing fact.
func (db *Database) InsertOnce(addr Address, f Fact) {
	if _, ok := db.Get(addr, f.Kind()); ok {
		return
	}
	db.record(addr, f)
}

// BranchTargetAt returns the BranchTarget fact at addr, creating (and
// recording) a default-constructed one if absent.
func (db *Database) BranchTargetAt(addr Address) *BranchTarget {
	if f, ok := db.Get(addr, KindBranchTarget); ok {
		return f.(*BranchTarget)
	}
	f := &BranchTarget{}
	db.record(addr, f)
	return f
}

// BasicBlockEndAt returns the BasicBlockEnd fact at addr, creating (and
// recording) a default-constructed one if absent.
func (db *Database) BasicBlockEndAt(addr Address) *BasicBlockEnd {
	if f, ok := db.Get(addr, KindBasicBlockEnd); ok {
		return f.(*BasicBlockEnd)
	}
	f := &BasicBlockEnd{}
	db.record(addr, f)
	return f
}

// IterAddressesOfKind returns every address carrying a fact of kind,
// ascending.
func (db *Database) IterAddressesOfKind(kind Kind) []Address {
	addrs := make([]Address, 0, len(db.byKind[kind]))
	for a := range db.byKind[kind] {
		addrs = append(addrs, a)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })
	return addrs
}

// AddressFacts pairs an address with every fact recorded there, for
// IterAll.
type AddressFacts struct {
	Address Address
	Facts   map[Kind]Fact
}

// IterAll returns every address with at least one fact, ascending, each
// paired with its full fact set.
func (db *Database) IterAll() []AddressFacts {
	out := make([]AddressFacts, 0, len(db.byAddress))
	for a, facts := range db.byAddress {
		out = append(out, AddressFacts{Address: a, Facts: facts})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Address < out[j].Address })
	return out
}
