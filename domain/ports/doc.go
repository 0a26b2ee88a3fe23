// Package ports defines the interfaces the application depends on. Adapters
// in hostfuncs, host and infrastructure implement them.
package ports
