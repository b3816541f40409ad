package constants

import "fmt"

const (
	RoleStaff          = "staff"
	RoleDepartmentHead = "department_head"
	RoleFacilityAdmin  = "facility_admin"
	RoleWorkspaceOwner = "workspace_owner"
)

// Role error message template
const ErrOnlySupervisorsCanAccess = "Only department heads, facility admins, or workspace owners may access %s."

func RoleErrorSupervisor(feature string) string {
	return fmt.Sprintf(ErrOnlySupervisorsCanAccess, feature)
}

// ==========================
// ✅ Grouped Role Slices
// ==========================
var (
	AllRoles = []string{
		RoleStaff,
		RoleDepartmentHead,
		RoleFacilityAdmin,
		RoleWorkspaceOwner,
	}

	// SupervisorRoles may create schedules and mutate assignments.
	SupervisorRoles = []string{
		RoleDepartmentHead,
		RoleFacilityAdmin,
		RoleWorkspaceOwner,
	}

	// AssignableRoles are the roster roles the eligibility resolver considers.
	AssignableRoles = []string{
		RoleStaff,
		RoleDepartmentHead,
	}
)
