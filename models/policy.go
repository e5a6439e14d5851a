package models

// allowedInteractions is the single source of truth for which ordered role
// pairs may form an interaction. A role without a row can never be a source.
var allowedInteractions = map[Role]map[Role]bool{
	RoleService: {
		RoleService:       true,
		RoleDatabase:      true,
		RoleMessageBroker: true,
		RoleMessageRouter: true,
	},
	RoleMessageRouter: {
		RoleService:       true,
		RoleDatabase:      true,
		RoleMessageBroker: true,
		RoleMessageRouter: true,
	},
}

// IsAllowed reports whether a node with role source may interact with a node
// with role target. It is total: unknown roles are never allowed.
func IsAllowed(source, target Role) bool {
	return allowedInteractions[source][target]
}

// AllowedTargets returns the roles a node with the given role may interact
// with, in the order of Roles. Database and MessageBroker return nil.
func AllowedTargets(source Role) []Role {
	row, ok := allowedInteractions[source]
	if !ok {
		return nil
	}

	var targets []Role
	for _, r := range Roles() {
		if row[r] {
			targets = append(targets, r)
		}
	}
	return targets
}

// CanSource reports whether nodes of the given role may start interactions.
func CanSource(r Role) bool {
	return len(allowedInteractions[r]) > 0
}
