// Package metrics exports table activity as prometheus metrics.
//
// A Collector implements table.Observer and owns a private registry, so
// several collectors can live in one process (tests, multiple containers)
// without clashing on the default registerer.
package metrics
