//go:build wasm

package main

// The browser build only runs the UI.
func serve() {}
