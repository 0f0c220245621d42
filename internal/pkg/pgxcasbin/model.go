package pgxcasbin

import (
	"github.com/casbin/casbin/v3"
	"github.com/casbin/casbin/v3/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RBACModel grants p rules to subjects directly or through g role links.
// "*" in a policy object or action matches anything.
const RBACModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && (p.obj == "*" || r.obj == p.obj) && (p.act == "*" || r.act == p.act)
`

// NewEnforcer loads the policies from pool and, when w is not nil, keeps them
// in sync with other instances.
func NewEnforcer(pool *pgxpool.Pool, w *Watcher, opts ...Option) (*casbin.Enforcer, error) {
	m, err := model.NewModelFromString(RBACModel)
	if err != nil {
		return nil, err
	}

	e, err := casbin.NewEnforcer(m, NewAdapter(pool, opts...))
	if err != nil {
		return nil, err
	}
	e.EnableAutoSave(true)

	if w != nil {
		if err := e.SetWatcher(w); err != nil {
			return nil, err
		}
		if err := w.SetUpdateCallback(Apply(e)); err != nil {
			return nil, err
		}
		e.EnableAutoNotifyWatcher(true)
	}

	return e, nil
}
