package services

import "mini-shop/models"

// ensureOwner is the single ownership rule for carts and orders.
func ensureOwner(userID, ownerID int) error {
	if userID != ownerID {
		return models.AccessDenied()
	}
	return nil
}
