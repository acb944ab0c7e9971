package enum

// MovementType labels an inventory ledger row
type MovementType string

const (
	MovementTypeSale       MovementType = "sale"
	MovementTypePurchase   MovementType = "purchase"
	MovementTypeAdjustment MovementType = "adjustment"
	MovementTypeOpening    MovementType = "opening"
)

// UserRole is the role carried in the auth token
type UserRole string

const (
	UserRoleAdmin   UserRole = "admin"
	UserRoleCashier UserRole = "cashier"
)
