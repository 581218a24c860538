package domain

import (
	"errors"
	"testing"

	membershipdomain "orgmembership/internal/membership/domain"
)

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Foo@Bar.COM "); got != "foo@bar.com" {
		t.Errorf("NormalizeEmail = %q, want foo@bar.com", got)
	}
}

func TestValidateEmail(t *testing.T) {
	testCases := []struct {
		email string
		want  error
	}{
		{"a@x.com", nil},
		{"first.last+tag@sub.example.org", nil},
		{"", ErrEmailRequired},
		{"not-an-email", ErrInvalidEmail},
		{"a@b", ErrInvalidEmail},
		{"a @x.com", ErrInvalidEmail},
	}
	for _, tc := range testCases {
		if err := ValidateEmail(tc.email); !errors.Is(err, tc.want) {
			t.Errorf("ValidateEmail(%q) = %v, want %v", tc.email, err, tc.want)
		}
	}
}

func TestUser_Validate(t *testing.T) {
	testCases := []struct {
		name    string
		user    User
		wantErr bool
	}{
		{"unaffiliated", User{Email: "a@x.com"}, false},
		{"affiliated", User{Email: "a@x.com", OrganizationID: "o1", Role: membershipdomain.RoleAdmin}, false},
		{"org without role", User{Email: "a@x.com", OrganizationID: "o1"}, true},
		{"role without org", User{Email: "a@x.com", Role: membershipdomain.RoleMember}, true},
		{"bad role", User{Email: "a@x.com", OrganizationID: "o1", Role: "owner"}, true},
		{"missing email", User{}, true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			u := tc.user
			err := u.Validate()
			if (err != nil) != tc.wantErr {
				t.Fatalf("Validate() err = %v, wantErr %v", err, tc.wantErr)
			}
			if err == nil && u.Status != UserStatusActive {
				t.Errorf("Status = %q, want default active", u.Status)
			}
		})
	}
}

func TestUser_IsAdmin(t *testing.T) {
	u := &User{Email: "a@x.com", OrganizationID: "o1", Role: membershipdomain.RoleAdmin}
	if !u.IsAdmin() || !u.Affiliated() {
		t.Error("affiliated admin not reported as admin")
	}
	u = &User{Email: "a@x.com"}
	if u.IsAdmin() || u.Affiliated() {
		t.Error("unaffiliated user reported as admin")
	}
}
