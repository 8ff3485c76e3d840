package enums

// UserRole distinguishes buyers from shop partners.
type UserRole string

const (
	UserRoleCustomer UserRole = "customer"
	UserRoleShop     UserRole = "shop"
)

func (r UserRole) IsValid() bool {
	switch r {
	case UserRoleCustomer, UserRoleShop:
		return true
	}
	return false
}

func (r UserRole) String() string {
	return string(r)
}
