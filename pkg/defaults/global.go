package defaults

import (
	"sync"

	"github.com/testpods-go/testpods/pkg/cluster"
)

// globalDefaults is the process-wide fallback (tier 2 of §4.7):
// write-once-at-init, read-only thereafter from every goroutine's
// perspective. It is guarded by a mutex so concurrent reads and writes are
// safe; the setters do not reject a second write.
type globalDefaults struct {
	mu           sync.RWMutex
	cluster      ClusterSupplier
	sharedNs     string
	autoDiscover ClusterSupplier
}

// Global is the single process-wide defaults holder.
var Global = &globalDefaults{}

// SetCluster sets the process-wide default cluster supplier (tier 2).
func (g *globalDefaults) SetCluster(supplier ClusterSupplier) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cluster = supplier
}

// SetNamespace sets the process-wide default shared namespace (tier 2).
func (g *globalDefaults) SetNamespace(namespace string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sharedNs = namespace
}

// SetAutoDiscovery installs the tier-3 fallback invoked when neither a
// scope override nor the process-wide default is set.
func (g *globalDefaults) SetAutoDiscovery(supplier ClusterSupplier) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.autoDiscover = supplier
}

func (g *globalDefaults) hasCluster() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.cluster != nil
}

func (g *globalDefaults) resolveCluster() (cluster.Handle, error) {
	g.mu.RLock()
	supplier, auto := g.cluster, g.autoDiscover
	g.mu.RUnlock()
	if supplier != nil {
		return supplier()
	}
	if auto != nil {
		return auto()
	}
	return nil, errNoClusterConfigured
}

func (g *globalDefaults) namespace() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.sharedNs
}

// Clear resets the process-wide defaults. Intended for test teardown of
// the library's own test suite; library consumers set this once at
// startup and should not call Clear in normal operation.
func (g *globalDefaults) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cluster = nil
	g.sharedNs = ""
	g.autoDiscover = nil
}
