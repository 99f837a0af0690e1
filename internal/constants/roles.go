package constants

// Ledger-scoped roles checked through the access oracle.
const (
	RoleIssuer         = "issuer"
	RoleVerifier       = "verifier"
	RoleBridgeOperator = "bridge_operator"
	RoleAdministrator  = "administrator"
)

// Role check targets. A grant is scoped to exactly one of these.
const (
	LedgerRegistry = "registry"
	LedgerCredits  = "credits"
	LedgerFunds    = "funds"
)

// ValidRoles is the set of grantable roles.
var ValidRoles = []string{RoleIssuer, RoleVerifier, RoleBridgeOperator, RoleAdministrator}

// ValidLedgers is the set of role targets.
var ValidLedgers = []string{LedgerRegistry, LedgerCredits, LedgerFunds}

// IsValidRole returns true if role is grantable.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}

// IsValidLedger returns true if ledger is a known role target.
func IsValidLedger(ledger string) bool {
	for _, l := range ValidLedgers {
		if l == ledger {
			return true
		}
	}
	return false
}
