package booking

// Identity is the caller identity handed to the booking service by the
// authentication layer.  A known identity carries the LINE user id of
// the person behind the request; a machine caller (scoring terminal,
// admin script authenticated with the API key) is anonymous.  Every
// operation takes the identity as an explicit argument so the service
// never reads ambient request state.
type Identity struct {
	id    string
	known bool
}

// Caller returns the identity of an authenticated person.
func Caller(lineUserID string) Identity {
	return Identity{id: lineUserID, known: lineUserID != ""}
}

// Machine returns the anonymous identity used by API-key callers.
func Machine() Identity { return Identity{} }

// Known reports whether the identity names a concrete person.
func (i Identity) Known() bool { return i.known }

// ID returns the LINE user id, or the empty string for machine callers.
func (i Identity) ID() string { return i.id }

// MayMutate reports whether the caller may mutate a reservation whose
// owner column holds the given value.  A nil owner marks a legacy or
// machine-created row that anyone may touch; otherwise the caller must
// be the owner.
func (i Identity) MayMutate(owner *string) bool {
	if owner == nil {
		return true
	}
	return i.known && i.id == *owner
}

// Owns is the strict variant used where anonymous rows must not be
// claimed: the owner must be set and equal to the caller.
func (i Identity) Owns(owner *string) bool {
	return owner != nil && i.known && i.id == *owner
}
