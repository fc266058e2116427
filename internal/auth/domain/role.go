package domain

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// ValidRole reports whether r is a role this service knows about.
func ValidRole(r string) bool {
	return r == RoleUser || r == RoleAdmin
}

// capabilities is the single authorization table consulted per request:
// role -> resource -> allowed actions. Route handlers never hard-code role
// checks; they declare the resource and action they need.
var capabilities = map[string]map[string][]string{
	RoleAdmin: {
		"forms":    {"create", "read", "update", "delete", "manage"},
		"users":    {"create", "read", "update", "delete", "manage"},
		"settings": {"read", "update"},
	},
	RoleUser: {
		"forms":    {"create", "read", "update", "delete"},
		"settings": {"read"},
	},
}

// RoleCan reports whether role may perform action on resource.
func RoleCan(role, resource, action string) bool {
	resources, ok := capabilities[role]
	if !ok {
		return false
	}
	for _, a := range resources[resource] {
		if a == action {
			return true
		}
	}
	return false
}
