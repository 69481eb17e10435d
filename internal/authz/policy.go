// Package authz holds the pure authorization decisions for the application.
// Every ownership or role check in the service layer goes through these
// functions so the rules cannot drift between endpoints.
package authz

// Actor is the authenticated identity performing an operation.
type Actor struct {
	ID      uint
	IsAdmin bool
}

// CanMutate reports whether the actor may edit or delete a resource owned by
// ownerID. Admins may mutate anything; everyone else only their own content.
func CanMutate(actor Actor, ownerID uint) bool {
	return actor.IsAdmin || actor.ID == ownerID
}

// CanManageUsers reports whether the actor may list or edit other accounts.
func CanManageUsers(actor Actor) bool {
	return actor.IsAdmin
}

// CanDeleteUser reports whether the actor may delete the target account.
// An admin may never delete itself through this path.
func CanDeleteUser(actor Actor, targetID uint) bool {
	return actor.IsAdmin && actor.ID != targetID
}

// CanChangeAdminFlag reports whether the actor may change the admin flag on
// the target account. Mirrors CanDeleteUser: no self-demotion lockout.
func CanChangeAdminFlag(actor Actor, targetID uint) bool {
	return actor.IsAdmin && actor.ID != targetID
}
