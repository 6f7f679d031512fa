package observation

// AccessList records the properties read during one tracking scope.
// Entries are keyed by registrar identity, each holding the set of
// properties read on that registrar. An AccessList is confined to the
// goroutine running the scope and needs no locking.
type AccessList struct {
	entries map[*Registrar]*accessEntry

	// order lists registrars by first read, so watches are registered
	// deterministically.
	order []*Registrar
}

type accessEntry struct {
	properties map[PropertyID]struct{}
	order      []PropertyID
}

func newAccessList() *AccessList {
	return &AccessList{entries: make(map[*Registrar]*accessEntry)}
}

// trackAccess adds p to the set recorded for r. Repeated reads collapse.
func (l *AccessList) trackAccess(r *Registrar, p PropertyID) {
	e, ok := l.entries[r]
	if !ok {
		e = &accessEntry{properties: make(map[PropertyID]struct{})}
		l.entries[r] = e
		l.order = append(l.order, r)
	}
	if _, seen := e.properties[p]; seen {
		return
	}
	e.properties[p] = struct{}{}
	e.order = append(e.order, p)
}

// merge records every read of other into l.
func (l *AccessList) merge(other *AccessList) {
	for _, r := range other.order {
		for _, p := range other.entries[r].order {
			l.trackAccess(r, p)
		}
	}
}

// Len returns the number of distinct registrars read.
func (l *AccessList) Len() int {
	return len(l.order)
}

// Dependencies returns the number of distinct (registrar, property) pairs read.
func (l *AccessList) Dependencies() int {
	n := 0
	for _, e := range l.entries {
		n += len(e.order)
	}
	return n
}

// Properties returns the properties read on r, in first-read order.
func (l *AccessList) Properties(r *Registrar) []PropertyID {
	e, ok := l.entries[r]
	if !ok {
		return nil
	}
	return append([]PropertyID(nil), e.order...)
}
