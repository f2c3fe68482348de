package fiber

import "sync"

// goroutine local storage; the map contains one entry for each goroutine
// currently running a coroutine. Stored once at creation, looked up once
// per Yield.
//
// TODO: shard the map (64 buckets keyed by masked g address, one sync.Mutex
// each) if the global lock shows up in highly parallel programs.
var (
	gmutex sync.RWMutex
	gstate map[*g]any
)

func loadContext(gp *g) any {
	gmutex.RLock()
	v := gstate[gp]
	gmutex.RUnlock()
	return v
}

func storeContext(gp *g, c any) {
	gmutex.Lock()
	if gstate == nil {
		gstate = make(map[*g]any)
	}
	gstate[gp] = c
	gmutex.Unlock()
}

func clearContext(gp *g) {
	gmutex.Lock()
	delete(gstate, gp)
	gmutex.Unlock()
}
