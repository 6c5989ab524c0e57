// Package health provides composable probes and the liveness/readiness
// handlers served on both the public and the ops listener.
//
// Probes combine with [All] and [Any]; [CheckFunc] adapts a function and
// [Fixed] gives a constant result. [ShutdownGate] fails readiness as soon as
// draining starts so load balancers stop routing avatar traffic before the
// listener closes.
package health
