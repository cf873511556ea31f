package middleware

import (
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	stringadapter "github.com/casbin/casbin/v2/persist/string-adapter"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"TaskFlow/internal/apperr"
	"TaskFlow/internal/auth"
)

const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && keyMatch2(r.obj, p.obj) && regexMatch(r.act, p.act)
`

const (
	read   = "GET"
	create = "POST"
	write  = "(PUT)|(PATCH)"
	remove = "DELETE"
	modify = "(PUT)|(PATCH)|(DELETE)"
)

// rbacPolicy grants each role its permissions; manager inherits member and
// admin inherits manager.
var rbacPolicy = []string{
	"g, manager, member",
	"g, admin, manager",

	"p, member, /api/*, " + read,
	"p, member, /api/auth/me, " + write,
	"p, member, /api/tasks, " + create,
	"p, member, /api/tasks/*, " + write,
	"p, member, /api/comments, " + create,
	"p, member, /api/comments/*, " + modify,
	"p, member, /api/notifications/*, " + modify,

	"p, manager, /api/tasks/*, " + remove,
	"p, manager, /api/projects, " + create,
	"p, manager, /api/projects/*, " + modify,
	"p, manager, /api/departments, " + create,
	"p, manager, /api/departments/*, " + modify,
	"p, manager, /api/clients, " + create,
	"p, manager, /api/clients/*, " + modify,
	"p, manager, /api/contacts, " + create,
	"p, manager, /api/contacts/*, " + modify,
	"p, manager, /api/meetings, " + create,
	"p, manager, /api/meetings/*, " + modify,
	"p, manager, /api/events, " + create,
	"p, manager, /api/events/*, " + modify,
	"p, manager, /api/reports, " + create,
	"p, manager, /api/reports/*, " + create,
	"p, manager, /api/reports/*, " + modify,

	"p, admin, /api/*, .*",
}

var errForbidden = apperr.Forbidden("Forbidden: insufficient permissions")

// NewEnforcer builds the casbin enforcer from the in-code model and policy.
func NewEnforcer() (*casbin.Enforcer, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, err
	}
	adapter := stringadapter.NewAdapter(strings.Join(rbacPolicy, "\n"))
	return casbin.NewEnforcer(m, adapter)
}

// CasbinMiddleware authorizes the request path and method against the role in
// the JWT claims. It must run after JWTMiddleware.
func CasbinMiddleware(enf *casbin.Enforcer, logger *zap.Logger) echo.MiddlewareFunc {
	logger = logger.Named("rbac")
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := auth.CurrentUser(c)
			if err != nil {
				return err
			}
			role := claims.Role
			obj := c.Request().URL.Path
			act := c.Request().Method

			allowed, err := enf.Enforce(role, obj, act)
			if err != nil {
				return err
			}
			if !allowed {
				logger.Debug("denied", zap.String("role", role), zap.String("obj", obj), zap.String("act", act))
				return errForbidden
			}
			return next(c)
		}
	}
}
