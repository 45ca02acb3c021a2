// Package terminal owns the controlling terminal for the lifetime of the client.
//
// Features:
//   - Non-canonical, non-echoing keyboard input with a non-blocking PollKey
//   - Platform key sources: termios + poll on Unix, msvcrt console on Windows
//   - Optional full-screen transcript view backed by tcell
//   - Restoration of the prior terminal mode on exit, signal and panic
//
// Key sources deliver raw bytes; decoding them into commands belongs to the input package.
package terminal
