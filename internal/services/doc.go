// Package services orchestrates the domain packages: it validates input,
// persists through the storage layer, publishes transaction events and
// caches period summaries.
package services
