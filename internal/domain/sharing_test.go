package domain_test

import (
	"errors"
	"testing"

	"github.com/foxfund/foxfund-go/internal/domain"
)

func sharedBudget() *domain.Budget {
	return &domain.Budget{
		ID:     "b1",
		UserID: "owner",
		Shares: []domain.BudgetShare{
			{ID: "s-editor", BudgetID: "b1", UserID: "editor", CanEdit: true},
			{ID: "s-viewer", BudgetID: "b1", UserID: "viewer", CanEdit: false},
		},
	}
}

func TestClassifyRole(t *testing.T) {
	budget := sharedBudget()
	cases := []struct {
		actor string
		want  domain.Role
	}{
		{"owner", domain.RoleOwner},
		{"editor", domain.RoleEditorShare},
		{"viewer", domain.RoleViewerShare},
		{"stranger", domain.RoleNoAccess},
	}
	for _, tc := range cases {
		if got := domain.ClassifyRole(budget, tc.actor); got != tc.want {
			t.Errorf("ClassifyRole(%s) = %s, want %s", tc.actor, got, tc.want)
		}
	}
}

func TestRolePermissions(t *testing.T) {
	cases := []struct {
		role                              domain.Role
		view, edit, del, manage           bool
	}{
		{domain.RoleOwner, true, true, true, true},
		{domain.RoleEditorShare, true, true, false, false},
		{domain.RoleViewerShare, true, false, false, false},
		{domain.RoleNoAccess, false, false, false, false},
	}
	for _, tc := range cases {
		if tc.role.CanView() != tc.view {
			t.Errorf("%s.CanView() = %v, want %v", tc.role, tc.role.CanView(), tc.view)
		}
		if tc.role.CanEdit() != tc.edit {
			t.Errorf("%s.CanEdit() = %v, want %v", tc.role, tc.role.CanEdit(), tc.edit)
		}
		if tc.role.CanDelete() != tc.del {
			t.Errorf("%s.CanDelete() = %v, want %v", tc.role, tc.role.CanDelete(), tc.del)
		}
		if tc.role.CanManageShares() != tc.manage {
			t.Errorf("%s.CanManageShares() = %v, want %v", tc.role, tc.role.CanManageShares(), tc.manage)
		}
	}
}

// View denial surfaces as "not found", never "forbidden": existence must not
// leak to actors with no role.
func TestAuthorizeView_MasksExistence(t *testing.T) {
	budget := sharedBudget()

	if err := domain.AuthorizeView(budget, "viewer"); err != nil {
		t.Errorf("viewer must be allowed to view, got %v", err)
	}

	err := domain.AuthorizeView(budget, "stranger")
	var notFound *domain.ErrNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	var forbidden *domain.ErrForbidden
	if errors.As(err, &forbidden) {
		t.Fatal("view denial must never surface as forbidden")
	}
}

func TestAuthorizeEdit(t *testing.T) {
	budget := sharedBudget()

	if err := domain.AuthorizeEdit(budget, "owner"); err != nil {
		t.Errorf("owner edit: %v", err)
	}
	if err := domain.AuthorizeEdit(budget, "editor"); err != nil {
		t.Errorf("editor edit: %v", err)
	}

	err := domain.AuthorizeEdit(budget, "viewer")
	var forbidden *domain.ErrForbidden
	if !errors.As(err, &forbidden) {
		t.Errorf("viewer edit: expected ErrForbidden, got %v", err)
	}

	err = domain.AuthorizeEdit(budget, "stranger")
	var notFound *domain.ErrNotFound
	if !errors.As(err, &notFound) {
		t.Errorf("stranger edit: expected ErrNotFound, got %v", err)
	}
}

// An editor share can change numbers but never destroy the resource.
func TestAuthorizeDelete_EditorForbidden(t *testing.T) {
	budget := sharedBudget()

	if err := domain.AuthorizeDelete(budget, "owner"); err != nil {
		t.Errorf("owner delete: %v", err)
	}

	err := domain.AuthorizeDelete(budget, "editor")
	var forbidden *domain.ErrForbidden
	if !errors.As(err, &forbidden) {
		t.Errorf("editor delete: expected ErrForbidden, got %v", err)
	}
}

func TestAuthorizeShareCreate(t *testing.T) {
	budget := sharedBudget()

	if err := domain.AuthorizeShareCreate(budget, "owner", "newcomer"); err != nil {
		t.Errorf("owner sharing with newcomer: %v", err)
	}

	var selfShare *domain.ErrSelfShare
	if err := domain.AuthorizeShareCreate(budget, "owner", "owner"); !errors.As(err, &selfShare) {
		t.Errorf("self share: expected ErrSelfShare, got %v", err)
	}

	var duplicate *domain.ErrDuplicate
	if err := domain.AuthorizeShareCreate(budget, "owner", "viewer"); !errors.As(err, &duplicate) {
		t.Errorf("duplicate share: expected ErrDuplicate, got %v", err)
	}

	// Sharing is not transitive: an editor cannot re-share.
	var notFound *domain.ErrNotFound
	if err := domain.AuthorizeShareCreate(budget, "editor", "newcomer"); !errors.As(err, &notFound) {
		t.Errorf("editor re-share: expected ErrNotFound, got %v", err)
	}
}

func TestAuthorizeShareRemoval(t *testing.T) {
	budget := sharedBudget()
	viewerShare := &budget.Shares[1]

	// Owner-initiated revocation.
	if err := domain.AuthorizeShareRemoval(budget, viewerShare, "owner"); err != nil {
		t.Errorf("owner revocation: %v", err)
	}

	// Self-revocation ("leave") is allowed even without edit rights.
	if err := domain.AuthorizeShareRemoval(budget, viewerShare, "viewer"); err != nil {
		t.Errorf("self revocation: %v", err)
	}

	// Another grantee cannot remove someone else's share.
	var notFound *domain.ErrNotFound
	if err := domain.AuthorizeShareRemoval(budget, viewerShare, "editor"); !errors.As(err, &notFound) {
		t.Errorf("cross-grantee revocation: expected ErrNotFound, got %v", err)
	}
}
