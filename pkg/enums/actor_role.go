package enums

// ActorRole distinguishes storefront customers from the shop owner.
type ActorRole string

const (
	ActorRoleCustomer ActorRole = "customer"
	ActorRoleOwner    ActorRole = "owner"
)

var validActorRoles = []ActorRole{ActorRoleCustomer, ActorRoleOwner}

func (v ActorRole) String() string { return string(v) }

func (v ActorRole) IsValid() bool { return known(validActorRoles, v) }

func ParseActorRole(value string) (ActorRole, error) {
	return parse(validActorRoles, value, "actor role")
}
