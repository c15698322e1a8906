package auth

import "testing"

func TestUser_Validate(t *testing.T) {
	tests := []struct {
		name    string
		user    User
		wantErr bool
	}{
		{
			name:    "Valid User",
			user:    User{ID: "u-1", Email: "admin@example.com", Role: RoleAdmin, Status: StatusActive},
			wantErr: false,
		},
		{
			name:    "Missing Email",
			user:    User{ID: "u-1", Role: RoleUser, Status: StatusActive},
			wantErr: true,
		},
		{
			name:    "Malformed Email",
			user:    User{ID: "u-1", Email: "admin", Role: RoleUser, Status: StatusActive},
			wantErr: true,
		},
		{
			name:    "Missing Role",
			user:    User{ID: "u-1", Email: "a@b.c", Status: StatusActive},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.user.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestUser_IsActive(t *testing.T) {
	u := User{Status: StatusActive}
	if !u.IsActive() {
		t.Error("expected active")
	}
	u.Status = StatusDisabled
	if u.IsActive() {
		t.Error("expected not active")
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Admin@Example.COM "); got != "admin@example.com" {
		t.Errorf("NormalizeEmail() = %q", got)
	}
}
