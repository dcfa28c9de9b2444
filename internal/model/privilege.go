package model

// Privilege represents a permission that can be assigned to users
type Privilege struct {
	ID   uint   `gorm:"column:ID;primaryKey" json:"id"`
	Code string `gorm:"column:Code;type:varchar(50);uniqueIndex;not null" json:"code"` // e.g., "product:create"
	Name string `gorm:"column:Name;type:varchar(100)" json:"name"`                     // e.g., "Create Product"
}

func (Privilege) TableName() string {
	return "Privilege"
}

// Default privileges for the system
var DefaultPrivileges = []Privilege{
	// User management
	{Code: "user:view", Name: "View User"},
	{Code: "user:create", Name: "Create User"},
	{Code: "user:update", Name: "Update User"},
	{Code: "user:delete", Name: "Delete User"},
	{Code: "user:update_privilege", Name: "Update User Privileges"},
	// Product management
	{Code: "product:view", Name: "View Product"},
	{Code: "product:create", Name: "Create Product"},
	{Code: "product:update", Name: "Update Product"},
	{Code: "product:delete", Name: "Delete Product"},
	// Inventory (stock batch) management
	{Code: "inventory:view", Name: "View Inventory"},
	{Code: "inventory:create", Name: "Add Stock Batch"},
	{Code: "inventory:update", Name: "Update Stock Batch"},
	{Code: "inventory:delete", Name: "Deactivate Stock Batch"},
	// Transaction management
	{Code: "transaction:view", Name: "View Transaction"},
	{Code: "transaction:create", Name: "Create Transaction"},
	{Code: "transaction:delete", Name: "Delete Transaction"},
	// Discount management
	{Code: "discount:view", Name: "View Discount"},
	{Code: "discount:create", Name: "Create Discount"},
	// Dashboard
	{Code: "dashboard:view", Name: "View Dashboard"},
}

// CashierPrivilegeCodes are the privileges granted to the CASHIER role
var CashierPrivilegeCodes = []string{
	"product:view",
	"inventory:view",
	"transaction:view",
	"transaction:create",
	"discount:view",
}
