// Package share performs the filesystem operations that the protocol layer
// exposes as tools: listing visible files under the shared root and reading
// their contents.
//
// The package never makes access decisions itself. It asks the policy gate
// for every file it would reveal, and collapses every negative decision into
// the single ErrNotAccessible value, so remote callers cannot distinguish a
// hard-denied path from one that is merely not listed or does not exist.
package share
