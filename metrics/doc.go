// Package metrics exposes council activity as Prometheus metrics: agent call
// outcomes and latency, rounds by mode, debate exchanges and synthesis
// outcomes. A Collector owns its own registry so several councils (or tests)
// can coexist in one process.
package metrics
