package models

import (
	"fmt"
	"strings"
)

// Role is the fixed category of an architecture node. The role decides which
// interactions a node may take part in; see IsAllowed.
type Role string

const (
	// RoleService is a business service that calls other nodes
	RoleService Role = "service"

	// RoleDatabase is a passive data store
	RoleDatabase Role = "database"

	// RoleMessageBroker is an asynchronous message broker (queue, topic)
	RoleMessageBroker Role = "message_broker"

	// RoleMessageRouter is a synchronous router (API gateway, load balancer)
	RoleMessageRouter Role = "message_router"
)

// Roles lists every known role in a stable order.
func Roles() []Role {
	return []Role{RoleService, RoleDatabase, RoleMessageBroker, RoleMessageRouter}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleService, RoleDatabase, RoleMessageBroker, RoleMessageRouter:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// ParseRole converts a role name into a Role. Matching is case-insensitive and
// accepts both "message_broker" and "messagebroker" spellings.
func ParseRole(s string) (Role, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.ReplaceAll(normalized, "-", "_")

	switch normalized {
	case "service":
		return RoleService, nil
	case "database", "datastore":
		return RoleDatabase, nil
	case "message_broker", "messagebroker":
		return RoleMessageBroker, nil
	case "message_router", "messagerouter":
		return RoleMessageRouter, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}
