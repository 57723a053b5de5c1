package domain

// ============================================================
// Budget sharing authorization
// ============================================================

// Role classifies an actor against a specific budget.
type Role string

const (
	RoleOwner       Role = "owner"
	RoleEditorShare Role = "editor"
	RoleViewerShare Role = "viewer"
	RoleNoAccess    Role = "none"
)

// ClassifyRole decides the actor's role on a budget from its owner and its
// set of shares. Pure decision function, no lookup side effects.
func ClassifyRole(budget *Budget, actorID string) Role {
	if budget.UserID == actorID {
		return RoleOwner
	}
	for _, share := range budget.Shares {
		if share.UserID == actorID {
			if share.CanEdit {
				return RoleEditorShare
			}
			return RoleViewerShare
		}
	}
	return RoleNoAccess
}

// CanView reports whether the role may read the budget.
func (r Role) CanView() bool {
	return r == RoleOwner || r == RoleEditorShare || r == RoleViewerShare
}

// CanEdit reports whether the role may change the budget's amount or period.
func (r Role) CanEdit() bool {
	return r == RoleOwner || r == RoleEditorShare
}

// CanDelete reports whether the role may delete the budget itself.
// Editor shares can change numbers but never destroy the resource.
func (r Role) CanDelete() bool {
	return r == RoleOwner
}

// CanManageShares reports whether the role may create shares, change a
// share's permissions, or revoke another user's share.
func (r Role) CanManageShares() bool {
	return r == RoleOwner
}

// AuthorizeView returns ErrNotFound when the actor has no role on the
// budget. A bare "not found" is deliberate: view denial must be
// indistinguishable from nonexistence.
func AuthorizeView(budget *Budget, actorID string) error {
	if !ClassifyRole(budget, actorID).CanView() {
		return &ErrNotFound{Resource: "budget", ID: budget.ID}
	}
	return nil
}

// AuthorizeEdit gates amount/month/year changes. Callers with no role at all
// get ErrNotFound; viewers get ErrForbidden.
func AuthorizeEdit(budget *Budget, actorID string) error {
	role := ClassifyRole(budget, actorID)
	if role == RoleNoAccess {
		return &ErrNotFound{Resource: "budget", ID: budget.ID}
	}
	if !role.CanEdit() {
		return &ErrForbidden{Action: "edit budget"}
	}
	return nil
}

// AuthorizeDelete gates deletion of the budget itself.
func AuthorizeDelete(budget *Budget, actorID string) error {
	role := ClassifyRole(budget, actorID)
	if role == RoleNoAccess {
		return &ErrNotFound{Resource: "budget", ID: budget.ID}
	}
	if !role.CanDelete() {
		return &ErrForbidden{Action: "delete budget"}
	}
	return nil
}

// AuthorizeShareCreate gates creating a new share on the budget.
// Only the owner may share; sharing is not transitive.
func AuthorizeShareCreate(budget *Budget, actorID, granteeID string) error {
	role := ClassifyRole(budget, actorID)
	if !role.CanManageShares() {
		return &ErrNotFound{Resource: "budget", ID: budget.ID}
	}
	if granteeID == budget.UserID {
		return &ErrSelfShare{}
	}
	for _, share := range budget.Shares {
		if share.UserID == granteeID {
			return &ErrDuplicate{Resource: "budget share", Key: granteeID}
		}
	}
	return nil
}

// AuthorizeShareRemoval decides whether the actor may delete a share:
// the owner may revoke any share, and a grantee may always remove their
// own access ("leave"), even without edit permissions.
func AuthorizeShareRemoval(budget *Budget, share *BudgetShare, actorID string) error {
	if budget.UserID == actorID {
		return nil
	}
	if share.UserID == actorID {
		return nil
	}
	return &ErrNotFound{Resource: "budget", ID: budget.ID}
}
