package models

// Role tags a user with the part of the marketplace they act for.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleAgency   Role = "agency"
	RoleHospital Role = "hospital"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleAgency, RoleHospital:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}
