/*
Package observability exposes hostflow activity as Prometheus metrics.

Metrics.Hooks plugs into the engine's lifecycle hooks (node visits, accepted
and rejected actions, entry effects, ended sessions). The same Metrics value
implements runner.Observer to time language model turns and count corrections.
*/
package observability
