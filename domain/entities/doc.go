// Package entities provides the core domain types shared by every side of the
// binding boundary: export descriptions, the JSON call envelope, and the
// structured error detail carried back to the host.
package entities
