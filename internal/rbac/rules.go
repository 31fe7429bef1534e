package rbac

// DefaultRules is the standard rule table for the service. Order
// matters: the static-asset and login rules must precede the catch-all
// "**" rule or they would never be reached.
func DefaultRules() []Rule {
	return []Rule{
		{Pattern: "/", Require: Public()},
		{Pattern: "/index", Require: Public()},
		{Pattern: "/css/*", Require: Public()},
		{Pattern: "/js/*", Require: Public()},
		{Pattern: "/login", Require: Public()},
		{Pattern: "/healthz", Require: Public()},
		{Pattern: "/metrics", Require: Public()},
		{Pattern: "/api/**", Require: HasRole(RoleStudent)},
		{Pattern: "/management/api/**", Methods: WriteMethods, Require: HasAuthority(PermStudentWrite)},
		{Pattern: "/management/api/**", Methods: ReadMethods, Require: HasAnyRole(RoleAdmin, RoleAdminTrainee)},
		{Pattern: "/**", Require: Authenticated()},
	}
}
