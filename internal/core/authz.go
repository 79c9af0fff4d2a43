package core

// Authorize is the ownership check gating every mutation: only the
// identity that created a transaction may change or delete it. The result
// is distinct from ErrNotFound so the boundary can decide whether to
// collapse the two.
func Authorize(t Transaction, callerOwnerID string) error {
	if t.OwnerID != callerOwnerID {
		return ErrUnauthorized
	}
	return nil
}
