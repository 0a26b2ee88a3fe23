// Package host runs native plugins compiled to WebAssembly.
//
// An Executor owns a wazero runtime with WASI, the "native" numeric host
// module and the "native_host" JSON host module. Plugins loaded through it
// expose sum, hello and describe; PluginInstance calls them after coercing
// host values at the boundary, so a bad argument never reaches guest code.
package host
