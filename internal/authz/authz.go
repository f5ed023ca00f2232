package authz

import "time"

// Conditions is the predicate bag attached to a permission. Every present
// condition must hold for the grant to apply; conditions refine access, they
// never widen it.
type Conditions map[string]any

// Context carries the request attributes conditions are evaluated against.
type Context struct {
	Now       time.Time
	IPAddress string
}

// Permission is a (resource, action) grant with optional conditions.
type Permission struct {
	ID          string
	Name        string
	Resource    string
	Action      string
	Conditions  Conditions
	Description string
}

// Role bundles permissions. Referenced by actors directly and by groups.
type Role struct {
	ID          string
	Name        string
	Permissions []Permission
}

// Group bundles roles; grants flow group -> role -> permission.
type Group struct {
	ID    string
	Name  string
	Roles []Role
}

// Actor is a user with its grant graph eagerly loaded. IsSuperuser is
// carried for the API layer but is not consulted by the resolver.
type Actor struct {
	ID                string
	Username          string
	Email             string
	IsActive          bool
	IsSuperuser       bool
	DirectPermissions []Permission
	Roles             []Role
	Groups            []Group
	CompanyIDs        []string
}
