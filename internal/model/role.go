package model

// Role represents user roles in the system
type Role struct {
	ID          uint        `gorm:"column:ID;primaryKey" json:"id"`
	Code        string      `gorm:"column:Code;type:varchar(50);uniqueIndex;not null" json:"code"` // MASTER_ADMIN, ADMIN, CASHIER
	Name        string      `gorm:"column:Name;type:varchar(100)" json:"name"`
	Description string      `gorm:"column:Description;type:text" json:"description"`
	Privileges  []Privilege `gorm:"many2many:Role_Privilege;" json:"privileges,omitempty"`
}

func (Role) TableName() string {
	return "Role"
}

// Role codes as constants
const (
	RoleMasterAdmin = "MASTER_ADMIN"
	RoleAdmin       = "ADMIN"
	RoleCashier     = "CASHIER"
)

// DefaultRoles defines the default roles in the system
var DefaultRoles = []Role{
	{
		Code:        RoleMasterAdmin,
		Name:        "Master Administrator",
		Description: "Full system access with all privileges",
	},
	{
		Code:        RoleAdmin,
		Name:        "Administrator",
		Description: "Pharmacy administration without user management",
	},
	{
		Code:        RoleCashier,
		Name:        "Cashier",
		Description: "Point-of-sale operation: record sales, view stock",
	},
}
