package defaults

import "errors"

// errNoClusterConfigured is returned when no scope override, process-wide
// default, or auto-discovery supplier can resolve a cluster.
var errNoClusterConfigured = errors.New("defaults: no cluster configured (set a scope override, a process-wide default, or an auto-discovery supplier)")
