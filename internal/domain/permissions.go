package domain

// Permission is a capability checked by the presentation layer before it
// exposes an operation. Values are bit flags so a role grants a set of them.
type Permission uint8

const (
	PermViewProducts Permission = 1 << iota
	PermViewOrders
	PermEditOrders
	PermEditProducts
)

var permissionNames = map[Permission]string{
	PermViewProducts: "view_products",
	PermViewOrders:   "view_orders",
	PermEditOrders:   "edit_orders",
	PermEditProducts: "edit_products",
}

// rolePermissions is the single source of truth for role based access.
var rolePermissions = map[Role]Permission{
	RoleGuest:    PermViewProducts,
	RoleCustomer: PermViewProducts,
	RoleManager:  PermViewProducts | PermViewOrders,
	RoleAdmin:    PermViewProducts | PermViewOrders | PermEditOrders | PermEditProducts,
}

func (p Permission) String() string {
	if name, ok := permissionNames[p]; ok {
		return name
	}
	return "unknown"
}

// Can reports whether the role grants p. Unknown roles grant nothing.
func (r Role) Can(p Permission) bool {
	granted, ok := rolePermissions[r]
	if !ok {
		return false
	}
	return granted&p == p
}

// Permissions lists the names of everything the role grants, in a stable order.
func (r Role) Permissions() []string {
	names := make([]string, 0, len(permissionNames))
	for _, p := range []Permission{PermViewProducts, PermViewOrders, PermEditOrders, PermEditProducts} {
		if r.Can(p) {
			names = append(names, p.String())
		}
	}
	return names
}
