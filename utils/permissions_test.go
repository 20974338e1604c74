package utils

import "testing"

func TestMatchesPermission(t *testing.T) {
	tests := []struct {
		name         string
		userPerm     string
		requiredPerm string
		expected     bool
	}{
		// Exact matches
		{"exact match same permission", "payment:approve", "payment:approve", true},
		{"exact match different action", "payment:approve", "payment:read", false},
		{"exact match different resource", "payment:approve", "quotation:approve", false},

		// Full wildcard tests
		{"full wildcard *:*:*", "*:*:*", "payment:approve", true},
		{"full wildcard *", "*", "anything:goes", true},
		{"full wildcard matches all resources", "*:*:*", "client:delete", true},
		{"full wildcard matches all actions", "*:*:*", "export:run", true},

		// Resource wildcard tests
		{"resource wildcard matches approve", "payment:*", "payment:approve", true},
		{"resource wildcard matches reject", "payment:*", "payment:reject", true},
		{"resource wildcard matches read", "payment:*", "payment:read", true},
		{"resource wildcard doesn't match different resource", "payment:*", "quotation:create", false},

		// Action wildcard tests
		{"action wildcard matches payment", "*:read", "payment:read", true},
		{"action wildcard matches quotation", "*:read", "quotation:read", true},
		{"action wildcard matches document", "*:read", "document:read", true},
		{"action wildcard doesn't match different action", "*:read", "payment:approve", false},

		// Old format backward compatibility
		{"old format exact match", "read_payments", "read_payments", true},
		{"old format no match", "read_payments", "create_payments", false},
		{"old format with wildcard", "*:*:*", "old_format_perm", true},

		// Edge cases
		{"empty required permission", "payment:approve", "", false},
		{"empty user permission", "", "payment:approve", false},
		{"both empty", "", "", true},
		{"single part permission", "admin", "admin", true},
		{"single part vs multi-part", "admin", "admin:read", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := MatchesPermission(tt.userPerm, tt.requiredPerm)
			if result != tt.expected {
				t.Errorf("MatchesPermission(%q, %q) = %v, expected %v",
					tt.userPerm, tt.requiredPerm, result, tt.expected)
			}
		})
	}
}

func TestMatchesPermission_RealWorldScenarios(t *testing.T) {
	tests := []struct {
		name      string
		userRole  string
		userPerms []string
		required  string
		expected  bool
	}{
		{
			name:      "super admin has all access",
			userRole:  "super_admin",
			userPerms: []string{"*:*:*"},
			required:  "payment:approve",
			expected:  true,
		},
		{
			name:      "admin has all payment permissions",
			userRole:  "admin",
			userPerms: []string{"payment:*"},
			required:  "payment:reject",
			expected:  true,
		},
		{
			name:      "admin with payment-only access cannot manage clients",
			userRole:  "admin",
			userPerms: []string{"payment:*"},
			required:  "client:create",
			expected:  false,
		},
		{
			name:      "staff has read-only access",
			userRole:  "staff",
			userPerms: []string{"*:read"},
			required:  "quotation:read",
			expected:  true,
		},
		{
			name:      "staff cannot approve",
			userRole:  "staff",
			userPerms: []string{"*:read"},
			required:  "payment:approve",
			expected:  false,
		},
		{
			name:      "document verifier has the one permission it needs",
			userRole:  "verifier",
			userPerms: []string{"document:verify"},
			required:  "document:verify",
			expected:  true,
		},
		{
			name:      "document verifier cannot delete",
			userRole:  "verifier",
			userPerms: []string{"document:verify"},
			required:  "document:delete",
			expected:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hasPermission := false
			for _, userPerm := range tt.userPerms {
				if MatchesPermission(userPerm, tt.required) {
					hasPermission = true
					break
				}
			}

			if hasPermission != tt.expected {
				t.Errorf("User with role %q and permissions %v: expected %v for %q, got %v",
					tt.userRole, tt.userPerms, tt.expected, tt.required, hasPermission)
			}
		})
	}
}

func BenchmarkMatchesPermission_ExactMatch(b *testing.B) {
	for i := 0; i < b.N; i++ {
		MatchesPermission("payment:approve", "payment:approve")
	}
}

func BenchmarkMatchesPermission_WildcardMatch(b *testing.B) {
	for i := 0; i < b.N; i++ {
		MatchesPermission("*:*:*", "payment:approve")
	}
}
