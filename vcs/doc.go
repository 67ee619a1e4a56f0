// Package vcs exposes git working tree state through the git binary.
//
// A Repository wraps one checkout; Status, Branches, and
// CurrentBranch shell out to git and parse the machine-readable
// porcelain formats. Calls take a context and apply a default timeout
// when the context carries no deadline, so an unresponsive filesystem
// cannot stall the caller.
package vcs
