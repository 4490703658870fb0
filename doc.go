// Package gatekeeper restricts who may submit a designated subset of
// ledger operations. It keeps a growable allow-list of accounts, grown
// through quorum voting among the accounts already on it, and exposes an
// admission check that the host's transaction pipeline consults before a
// restricted call is queued and again before it is executed.
package gatekeeper
