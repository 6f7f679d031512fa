package observation

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// trackingContext holds the reactive state for a goroutine.
// Each goroutine has its own tracking context so concurrent tracking
// scopes never see each other's reads.
type trackingContext struct {
	// accessList records reads for the innermost open tracking scope.
	accessList *AccessList
}

// trackingContexts stores per-goroutine tracking contexts.
// An entry exists only while its goroutine is inside a tracking scope.
var trackingContexts sync.Map

// activeContexts counts entries in trackingContexts so reads outside any
// tracking scope can skip the goroutine id lookup.
var activeContexts atomic.Int64

// getGoroutineID returns a unique identifier for the current goroutine.
// This uses the runtime stack to extract the goroutine ID.
func getGoroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)

	// The stack starts with "goroutine <id> "
	var id uint64
	for i := len("goroutine "); i < n; i++ {
		if buf[i] == ' ' {
			break
		}
		id = id*10 + uint64(buf[i]-'0')
	}
	return id
}

// currentAccessList returns the access list of the innermost tracking scope
// open on this goroutine, or nil.
func currentAccessList() *AccessList {
	if activeContexts.Load() == 0 {
		return nil
	}
	if ctx, ok := trackingContexts.Load(getGoroutineID()); ok {
		return ctx.(*trackingContext).accessList
	}
	return nil
}

// setCurrentAccessList installs l as this goroutine's access list and
// returns the previous one so it can be restored. Passing nil clears the
// goroutine's entry.
func setCurrentAccessList(l *AccessList) *AccessList {
	gid := getGoroutineID()

	if l == nil {
		if old, loaded := trackingContexts.LoadAndDelete(gid); loaded {
			activeContexts.Add(-1)
			return old.(*trackingContext).accessList
		}
		return nil
	}

	old, loaded := trackingContexts.Swap(gid, &trackingContext{accessList: l})
	if !loaded {
		activeContexts.Add(1)
		return nil
	}
	return old.(*trackingContext).accessList
}

// withAccessList runs fn with l as the current access list and restores the
// previous one afterwards, also when fn panics. When merge is true, reads
// recorded into l are folded into the restored outer list.
func withAccessList(l *AccessList, merge bool, fn func()) {
	old := setCurrentAccessList(l)
	defer func() {
		setCurrentAccessList(old)
		if merge && old != nil && l != nil {
			old.merge(l)
		}
	}()
	fn()
}

// Untracked runs fn without recording reads as dependencies of the
// enclosing tracking scope.
//
// Example:
//
//	observation.Track(func() {
//	    name := suspect.Name() // dependency
//	    observation.Untracked(func() {
//	        log.Println(suspect.Suspiciousness()) // not a dependency
//	    })
//	}, onChange)
func Untracked(fn func()) {
	withAccessList(nil, false, fn)
}
