// Package allowlist implements the quorum-voting state machine behind
// the gatekeeper's allow-list. Existing members vote to admit new
// accounts; once the configured fraction of the membership has voted for
// a candidate, the candidate becomes a member itself. Membership only
// ever grows: there is no revocation, delegation or vote expiry.
package allowlist
