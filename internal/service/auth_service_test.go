package service

import (
	"context"
	"testing"
	"time"

	"github.com/gasworks/servicedesk/internal/config"
	"github.com/gasworks/servicedesk/internal/domain"
	apperrors "github.com/gasworks/servicedesk/pkg/util"
)

type authFixture struct {
	users    *fakeUserRepo
	profiles *fakeProfileRepo
	resets   *fakePasswordResetRepo
	service  *AuthService
}

func newAuthFixture() *authFixture {
	users := newFakeUserRepo()
	profiles := newFakeProfileRepo()
	resets := newFakePasswordResetRepo()

	cfg := config.Config{
		Auth: config.AuthConfig{
			JWTSecret:               "test-secret",
			AccessTokenTTLMinutes:   5,
			PasswordResetTTLMinutes: 5,
			BcryptCost:              4, // keep tests fast
		},
	}
	svc := NewAuthService(cfg, AuthDependencies{
		UserRepo:          users,
		ProfileRepo:       profiles,
		PasswordResetRepo: resets,
	})
	return &authFixture{users: users, profiles: profiles, resets: resets, service: svc}
}

func registerCustomer(t *testing.T, f *authFixture) *domain.User {
	t.Helper()
	user, token, _, err := f.service.RegisterCustomer(context.Background(), RegisterCustomerInput{
		Username:      "jsmith",
		Email:         "jsmith@example.com",
		Password:      "s3cret",
		AccountNumber: "ACC-1001",
		Address:       "12 Pipeline Rd",
		PhoneNumber:   "555-0100",
	})
	if err != nil {
		t.Fatalf("RegisterCustomer: %v", err)
	}
	if token == "" {
		t.Fatal("registration should issue a token")
	}
	return user
}

func TestRegisterCustomer_CreatesUserAndProfile(t *testing.T) {
	f := newAuthFixture()
	user := registerCustomer(t, f)

	if user.Role != domain.RoleCustomer || !user.Active {
		t.Fatalf("unexpected account state: %+v", user)
	}
	profile, err := f.profiles.GetByUserID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("profile missing: %v", err)
	}
	if profile.AccountNumber != "ACC-1001" {
		t.Fatalf("unexpected account number %q", profile.AccountNumber)
	}
}

func TestRegisterCustomer_RejectsDuplicates(t *testing.T) {
	f := newAuthFixture()
	registerCustomer(t, f)

	_, _, _, err := f.service.RegisterCustomer(context.Background(), RegisterCustomerInput{
		Username:      "jsmith",
		Email:         "other@example.com",
		Password:      "pw",
		AccountNumber: "ACC-2",
	})
	if code := apperrors.ToDomainError(err).Code; code != "CONFLICT" {
		t.Fatalf("duplicate username: expected CONFLICT, got %s", code)
	}

	_, _, _, err = f.service.RegisterCustomer(context.Background(), RegisterCustomerInput{
		Username:      "other",
		Email:         "jsmith@example.com",
		Password:      "pw",
		AccountNumber: "ACC-2",
	})
	if code := apperrors.ToDomainError(err).Code; code != "CONFLICT" {
		t.Fatalf("duplicate email: expected CONFLICT, got %s", code)
	}
}

func TestLogin_ValidAndInvalidCredentials(t *testing.T) {
	f := newAuthFixture()
	registerCustomer(t, f)

	user, token, exp, err := f.service.Login(context.Background(), "jsmith", "s3cret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if token == "" || exp.Before(time.Now()) {
		t.Fatal("login should issue a future-dated token")
	}
	if user.PasswordHash == "s3cret" {
		t.Fatal("password must be stored hashed")
	}

	if _, _, _, err := f.service.Login(context.Background(), "jsmith", "wrong"); err == nil {
		t.Fatal("wrong password should fail")
	}
	if _, _, _, err := f.service.Login(context.Background(), "nobody", "s3cret"); err == nil {
		t.Fatal("unknown username should fail")
	}
}

func TestLogin_DisabledAccountRejected(t *testing.T) {
	f := newAuthFixture()
	user := registerCustomer(t, f)

	user.Active = false
	if err := f.users.Update(context.Background(), user); err != nil {
		t.Fatalf("disable account: %v", err)
	}
	_, _, _, err := f.service.Login(context.Background(), "jsmith", "s3cret")
	if code := apperrors.ToDomainError(err).Code; code != "UNAUTHORIZED" {
		t.Fatalf("expected UNAUTHORIZED, got %s", code)
	}
}

func TestUpdateProfile_CustomerNotesAreStaffOnly(t *testing.T) {
	f := newAuthFixture()
	customer := registerCustomer(t, f)
	notes := "always call before visiting"

	_, err := f.service.UpdateProfile(context.Background(), customer, customer.ID, ProfileUpdateInput{
		Address:       "12 Pipeline Rd",
		CustomerNotes: &notes,
	})
	if code := apperrors.ToDomainError(err).Code; code != "FORBIDDEN" {
		t.Fatalf("customer setting notes: expected FORBIDDEN, got %s", code)
	}

	staff := &domain.User{ID: "staff-1", Role: domain.RoleStaff, Active: true}
	profile, err := f.service.UpdateProfile(context.Background(), staff, customer.ID, ProfileUpdateInput{
		Address:       "12 Pipeline Rd",
		CustomerNotes: &notes,
	})
	if err != nil {
		t.Fatalf("staff update: %v", err)
	}
	if profile.CustomerNotes != notes {
		t.Fatalf("notes not applied: %q", profile.CustomerNotes)
	}
}

func TestChangePassword_VerifiesCurrent(t *testing.T) {
	f := newAuthFixture()
	user := registerCustomer(t, f)

	if err := f.service.ChangePassword(context.Background(), user.ID, "wrong", "newpw"); err == nil {
		t.Fatal("wrong current password should fail")
	}
	if err := f.service.ChangePassword(context.Background(), user.ID, "s3cret", "newpw"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	if _, _, _, err := f.service.Login(context.Background(), "jsmith", "newpw"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
}

func TestPasswordReset_FullFlow(t *testing.T) {
	f := newAuthFixture()
	registerCustomer(t, f)

	token, err := f.service.RequestPasswordReset(context.Background(), "jsmith@example.com")
	if err != nil {
		t.Fatalf("RequestPasswordReset: %v", err)
	}

	if err := f.service.ConfirmPasswordReset(context.Background(), token.Token, "resetpw"); err != nil {
		t.Fatalf("ConfirmPasswordReset: %v", err)
	}
	if _, _, _, err := f.service.Login(context.Background(), "jsmith", "resetpw"); err != nil {
		t.Fatalf("login after reset: %v", err)
	}

	// a token is single use
	if err := f.service.ConfirmPasswordReset(context.Background(), token.Token, "again"); err == nil {
		t.Fatal("reused token should fail")
	}
}

func TestPasswordReset_InvalidToken(t *testing.T) {
	f := newAuthFixture()

	err := f.service.ConfirmPasswordReset(context.Background(), "bogus", "pw")
	if code := apperrors.ToDomainError(err).Code; code != "VALIDATION_FAILED" {
		t.Fatalf("expected VALIDATION_FAILED, got %s", code)
	}
}
