// Package cli provides the interactive Mod Toolkit command-line client.
//
// It wires configuration, the HTTP API client, the live tools view, the
// local profile store, and the device introspection helpers into an
// interactive REPL. Typical flow: sign in, let the live view attach to the
// server push stream, then browse and toggle tools or inspect the device.
//
// Key features:
//   - Register / Login / Logout
//   - List, add, edit, toggle and delete tools (toggles apply optimistically,
//     deletes ask for confirmation first)
//   - Device facts, display refresh rate, root check, storage breakdown
//   - Avatar upload and cached download through presigned object-storage URLs
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
