package guard

import (
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"

	"storefront/internal/models"
)

// Area is a group of views protected by one rule.
type Area string

const (
	AreaStorefront Area = "storefront"
	AreaAdmin      Area = "admin"
)

// Authorizer decides whether a user kind may enter an area.
type Authorizer interface {
	Allowed(kind models.UserKind, area Area) (bool, error)
}

const rbacModel = `
[request_definition]
r = sub, obj

[policy_definition]
p = sub, obj

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj
`

// Policy is the role to area table: customers may use the storefront, admins inherit
// that and may also use the admin console.
type Policy struct {
	enforcer *casbin.Enforcer
}

func NewPolicy() (*Policy, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("guard policy model: %w", err)
	}
	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("guard policy enforcer: %w", err)
	}

	if _, err := enforcer.AddPolicies([][]string{
		{string(models.KindCustomer), string(AreaStorefront)},
		{string(models.KindAdmin), string(AreaAdmin)},
	}); err != nil {
		return nil, fmt.Errorf("guard policy rules: %w", err)
	}
	if _, err := enforcer.AddGroupingPolicy(string(models.KindAdmin), string(models.KindCustomer)); err != nil {
		return nil, fmt.Errorf("guard policy roles: %w", err)
	}
	return &Policy{enforcer: enforcer}, nil
}

func (p *Policy) Allowed(kind models.UserKind, area Area) (bool, error) {
	ok, err := p.enforcer.Enforce(string(kind), string(area))
	if err != nil {
		return false, fmt.Errorf("guard policy check: %w", err)
	}
	return ok, nil
}
