package service

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/ticketflow/backend/internal/domain"
	"github.com/ticketflow/backend/internal/events"
	"github.com/ticketflow/backend/pkg/util"
)

const testAdminEmail = "admin@company.com"

func newUserFixture(t *testing.T) (*UserService, *fakeUserRepo) {
	t.Helper()
	users := newFakeUserRepo()
	users.add(&domain.User{
		ID: "admin-1", Name: "Administrator", Email: testAdminEmail,
		Role: domain.RoleAdmin, Active: true, EmailVerified: true,
	})
	dispatcher := events.NewInMemoryDispatcher(zap.NewNop())
	return NewUserService(users, dispatcher, zap.NewNop(), testAdminEmail, 4), users
}

func TestCreateUserRequiresWritePermission(t *testing.T) {
	svc, _ := newUserFixture(t)
	client := asPrincipal(domain.RoleClient, "client-1")

	_, err := svc.Create(context.Background(), client, CreateUserInput{
		Name: "X", Email: "x@x.com", Password: "password123", Role: domain.RoleDeveloper,
	})
	if code := domainErrCode(t, err); code != util.CodeInsufficientPermissions {
		t.Errorf("code = %q, want %q", code, util.CodeInsufficientPermissions)
	}
}

func TestOnlyAdminCanCreateAdmins(t *testing.T) {
	svc, _ := newUserFixture(t)
	ctx := context.Background()

	manager := asPrincipal(domain.RoleManager, "manager-1")
	_, err := svc.Create(ctx, manager, CreateUserInput{
		Name: "X", Email: "x@x.com", Password: "password123", Role: domain.RoleAdmin,
	})
	if err == nil {
		t.Fatal("manager created an admin account")
	}

	admin := asPrincipal(domain.RoleAdmin, "admin-1")
	created, err := svc.Create(ctx, admin, CreateUserInput{
		Name: "X", Email: "x@x.com", Password: "password123", Role: domain.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("admin creating admin: %v", err)
	}
	if created.Role != domain.RoleAdmin {
		t.Errorf("role = %q, want admin", created.Role)
	}
}

func TestPermanentAdminCannotBeDeleted(t *testing.T) {
	svc, _ := newUserFixture(t)
	admin := asPrincipal(domain.RoleAdmin, "other-admin")

	err := svc.Delete(context.Background(), admin, "admin-1")
	if code := domainErrCode(t, err); code != util.CodePermanentAdmin {
		t.Errorf("code = %q, want %q", code, util.CodePermanentAdmin)
	}
}

func TestPermanentAdminCannotBeDemotedOrDeactivated(t *testing.T) {
	svc, _ := newUserFixture(t)
	admin := asPrincipal(domain.RoleAdmin, "other-admin")
	ctx := context.Background()

	client := domain.RoleClient
	_, err := svc.Update(ctx, admin, "admin-1", UpdateUserInput{Role: &client})
	if code := domainErrCode(t, err); code != util.CodePermanentAdmin {
		t.Errorf("demote code = %q, want %q", code, util.CodePermanentAdmin)
	}

	inactive := false
	_, err = svc.Update(ctx, admin, "admin-1", UpdateUserInput{Active: &inactive})
	if code := domainErrCode(t, err); code != util.CodePermanentAdmin {
		t.Errorf("deactivate code = %q, want %q", code, util.CodePermanentAdmin)
	}

	otherEmail := "new@company.com"
	_, err = svc.Update(ctx, admin, "admin-1", UpdateUserInput{Email: &otherEmail})
	if code := domainErrCode(t, err); code != util.CodePermanentAdmin {
		t.Errorf("email change code = %q, want %q", code, util.CodePermanentAdmin)
	}
}

func TestPermanentAdminCanBeRenamed(t *testing.T) {
	svc, _ := newUserFixture(t)
	admin := asPrincipal(domain.RoleAdmin, "other-admin")

	newName := "Root Admin"
	updated, err := svc.Update(context.Background(), admin, "admin-1", UpdateUserInput{Name: &newName})
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if updated.Name != "Root Admin" {
		t.Errorf("name = %q, want Root Admin", updated.Name)
	}
}

func TestCannotDeleteSelf(t *testing.T) {
	svc, users := newUserFixture(t)
	users.add(&domain.User{ID: "mgr", Name: "M", Email: "m@x.com", Role: domain.RoleManager, Active: true})

	manager := asPrincipal(domain.RoleManager, "mgr")
	if err := svc.Delete(context.Background(), manager, "mgr"); err == nil {
		t.Fatal("self-delete allowed")
	}
}

func TestUpdateRejectsDuplicateEmail(t *testing.T) {
	svc, users := newUserFixture(t)
	users.add(&domain.User{ID: "u1", Name: "A", Email: "a@x.com", Role: domain.RoleClient, Active: true})
	users.add(&domain.User{ID: "u2", Name: "B", Email: "b@x.com", Role: domain.RoleClient, Active: true})

	admin := asPrincipal(domain.RoleAdmin, "admin-1")
	taken := "a@x.com"
	_, err := svc.Update(context.Background(), admin, "u2", UpdateUserInput{Email: &taken})
	if code := domainErrCode(t, err); code != util.CodeEmailExists {
		t.Errorf("code = %q, want %q", code, util.CodeEmailExists)
	}
}

func TestOnlyAdminCanGrantAdminRole(t *testing.T) {
	svc, users := newUserFixture(t)
	users.add(&domain.User{ID: "u1", Name: "A", Email: "a@x.com", Role: domain.RoleDeveloper, Active: true})

	manager := asPrincipal(domain.RoleManager, "manager-1")
	adminRole := domain.RoleAdmin
	_, err := svc.Update(context.Background(), manager, "u1", UpdateUserInput{Role: &adminRole})
	if err == nil {
		t.Fatal("manager promoted a user to admin")
	}
}
