//go:build wasip1

// Command native-plugin builds the native exports as a WASI reactor:
//
//	GOOS=wasip1 GOARCH=wasm go build -buildmode=c-shared -o native.wasm ./cmd/native-plugin
//
// Load it with `nativectl plugin native.wasm sum 2 3`.
package main

import (
	_ "github.com/reglet-dev/native-starter/plugin"
)

func main() {}
