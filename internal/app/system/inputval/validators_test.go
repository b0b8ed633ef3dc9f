package inputval

import "testing"

func TestIsValidRole(t *testing.T) {
	tests := []struct {
		role string
		want bool
	}{
		// Valid roles
		{"admin", true},
		{"tutor", true},
		{"student", true},

		// Valid roles - case insensitive
		{"ADMIN", true},
		{"Tutor", true},
		{"STUDENT", true},

		// Valid with whitespace
		{"  admin  ", true},
		{"\tstudent\t", true},

		// Invalid roles
		{"", false},
		{"   ", false},
		{"superadmin", false},
		{"teacher", false},
		{"mentor", false},
		{"guest", false},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			got := IsValidRole(tt.role)
			if got != tt.want {
				t.Errorf("IsValidRole(%q) = %v, want %v", tt.role, got, tt.want)
			}
		})
	}
}

func TestAllowedRolesList(t *testing.T) {
	list := AllowedRolesList()

	if len(list) != 3 {
		t.Errorf("AllowedRolesList() has %d items, want 3", len(list))
	}

	expected := []string{"admin", "tutor", "student"}
	for i, want := range expected {
		if list[i] != want {
			t.Errorf("AllowedRolesList()[%d] = %q, want %q", i, list[i], want)
		}
	}
}

func TestIsValidObjectID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		// Valid ObjectIDs (24 hex characters)
		{"507f1f77bcf86cd799439011", true},
		{"000000000000000000000000", true},
		{"ffffffffffffffffffffffff", true},
		{"FFFFFFFFFFFFFFFFFFFFFFFF", true}, // uppercase hex is valid

		// Valid with whitespace (trimmed)
		{"  507f1f77bcf86cd799439011  ", true},

		// Invalid ObjectIDs
		{"", false},
		{"   ", false},
		{"507f1f77bcf86cd79943901", false},   // too short (23 chars)
		{"507f1f77bcf86cd7994390111", false}, // too long (25 chars)
		{"507f1f77bcf86cd79943901g", false},  // invalid hex char
		{"not-a-valid-id", false},
		{"12345", false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got := IsValidObjectID(tt.id)
			if got != tt.want {
				t.Errorf("IsValidObjectID(%q) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	type TestInput struct {
		Name  string `validate:"required,max=10" label:"Full name"`
		Email string `validate:"required,email" label:"Email address"`
	}

	tests := []struct {
		name       string
		input      TestInput
		wantErrors bool
		wantFirst  string
	}{
		{
			name:       "valid input",
			input:      TestInput{Name: "Asha", Email: "asha@example.com"},
			wantErrors: false,
		},
		{
			name:       "missing name",
			input:      TestInput{Name: "", Email: "asha@example.com"},
			wantErrors: true,
			wantFirst:  "Full name is required.",
		},
		{
			name:       "name too long",
			input:      TestInput{Name: "VeryLongNameThatExceedsLimit", Email: "asha@example.com"},
			wantErrors: true,
			wantFirst:  "Full name must be at most 10 characters.",
		},
		{
			name:       "invalid email",
			input:      TestInput{Name: "Asha", Email: "not-an-email"},
			wantErrors: true,
			wantFirst:  "A valid email address is required.",
		},
		{
			name:       "missing both",
			input:      TestInput{Name: "", Email: ""},
			wantErrors: true,
			wantFirst:  "Full name is required.", // First error
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate(tt.input)

			if result.HasErrors() != tt.wantErrors {
				t.Errorf("Validate() HasErrors = %v, want %v", result.HasErrors(), tt.wantErrors)
			}

			if tt.wantErrors && result.First() != tt.wantFirst {
				t.Errorf("Validate() First() = %q, want %q", result.First(), tt.wantFirst)
			}
		})
	}
}

func TestResult_All(t *testing.T) {
	t.Run("no errors", func(t *testing.T) {
		r := &Result{}
		if r.All() != "" {
			t.Errorf("All() = %q, want empty", r.All())
		}
	})

	t.Run("one error", func(t *testing.T) {
		r := &Result{
			Errors: []FieldError{{Message: "Error 1"}},
		}
		if r.All() != "Error 1" {
			t.Errorf("All() = %q, want %q", r.All(), "Error 1")
		}
	})

	t.Run("multiple errors", func(t *testing.T) {
		r := &Result{
			Errors: []FieldError{
				{Message: "Error 1"},
				{Message: "Error 2"},
			},
		}
		want := "Error 1; Error 2"
		if r.All() != want {
			t.Errorf("All() = %q, want %q", r.All(), want)
		}
	})
}

func TestResult_First(t *testing.T) {
	t.Run("no errors", func(t *testing.T) {
		r := &Result{}
		if r.First() != "" {
			t.Errorf("First() = %q, want empty", r.First())
		}
	})

	t.Run("with errors", func(t *testing.T) {
		r := &Result{
			Errors: []FieldError{
				{Message: "First error"},
				{Message: "Second error"},
			},
		}
		if r.First() != "First error" {
			t.Errorf("First() = %q, want %q", r.First(), "First error")
		}
	})
}

func TestValidate_CustomRules(t *testing.T) {
	type RoleInput struct {
		Role string `validate:"required,role" label:"Role"`
	}

	type IDInput struct {
		ID string `validate:"required,objectid" label:"Task ID"`
	}

	type StarsInput struct {
		Stars int `validate:"gte=0,lte=5" label:"Stars"`
	}

	t.Run("valid role", func(t *testing.T) {
		result := Validate(RoleInput{Role: "tutor"})
		if result.HasErrors() {
			t.Errorf("Validate(valid role) has errors: %v", result.Errors)
		}
	})

	t.Run("invalid role", func(t *testing.T) {
		result := Validate(RoleInput{Role: "wizard"})
		if !result.HasErrors() {
			t.Error("Validate(invalid role) should have errors")
		}
		if got := result.First(); got != "Role must be admin, tutor, or student." {
			t.Errorf("First() = %q", got)
		}
	})

	t.Run("valid ObjectID", func(t *testing.T) {
		result := Validate(IDInput{ID: "507f1f77bcf86cd799439011"})
		if result.HasErrors() {
			t.Errorf("Validate(valid ID) has errors: %v", result.Errors)
		}
	})

	t.Run("invalid ObjectID", func(t *testing.T) {
		result := Validate(IDInput{ID: "invalid-id"})
		if !result.HasErrors() {
			t.Error("Validate(invalid ID) should have errors")
		}
	})

	t.Run("stars in range", func(t *testing.T) {
		result := Validate(StarsInput{Stars: 5})
		if result.HasErrors() {
			t.Errorf("Validate(stars=5) has errors: %v", result.Errors)
		}
	})

	t.Run("stars out of range", func(t *testing.T) {
		result := Validate(StarsInput{Stars: 6})
		if !result.HasErrors() {
			t.Error("Validate(stars=6) should have errors")
		}
		if got := result.First(); got != "Stars must be at most 5." {
			t.Errorf("First() = %q", got)
		}
	})
}
