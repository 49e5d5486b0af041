package utils

// CheckOwnership enforces that a mutating operation is performed by the
// resource owner. The error never names the actual owner.
func CheckOwnership(ownerID, principalID uint) error {
	if ownerID == 0 || ownerID != principalID {
		return ErrForbidden
	}
	return nil
}
