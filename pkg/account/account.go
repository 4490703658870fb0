package account

// ID identifies a participant able to sign transactions. It is opaque to
// the gatekeeper: any stable byte string the host uses to name accounts
// (an address, a public key, a hash) works, as long as equal accounts
// compare equal.
type ID string

func (id ID) String() string {
	return string(id)
}

// Empty reports whether the ID carries no value. An empty ID is never a
// valid account.
func (id ID) Empty() bool {
	return len(id) == 0
}
