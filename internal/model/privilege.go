package model

// Privilege represents a permission that can be assigned to users
type Privilege struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // e.g., "material:create"
	Name string `gorm:"type:varchar(100)" json:"name"`
}

// Default privileges for the system
var DefaultPrivileges = []Privilege{
	// User management
	{Code: "user:view", Name: "View User"},
	{Code: "user:create", Name: "Create User"},
	{Code: "user:update", Name: "Update User"},
	{Code: "user:delete", Name: "Delete User"},
	{Code: "user:update_privilege", Name: "Update User Privileges"},
	// Material management
	{Code: "material:view", Name: "View Material"},
	{Code: "material:create", Name: "Create Material"},
	{Code: "material:update", Name: "Update Material"},
	{Code: "material:delete", Name: "Delete Material"},
	// Stock ledger
	{Code: "stock:view", Name: "View Stock Transaction"},
	{Code: "stock:move", Name: "Record Stock Movement"},
	{Code: "stock:adjust", Name: "Adjust Stock"},
	// Fixed assets
	{Code: "asset:view", Name: "View Asset"},
	{Code: "asset:create", Name: "Create Asset"},
	{Code: "asset:update", Name: "Update Asset"},
	{Code: "asset:delete", Name: "Delete Asset"},
	// Borrowing
	{Code: "borrow:view", Name: "View Borrow"},
	{Code: "borrow:create", Name: "Create Borrow"},
	{Code: "borrow:return", Name: "Return Asset"},
	{Code: "borrow:delete", Name: "Delete Borrow"},
	// Purchase requests
	{Code: "purchase:view", Name: "View Purchase Request"},
	{Code: "purchase:create", Name: "Create Purchase Request"},
	{Code: "purchase:review", Name: "Review Purchase Request"},
	// Reporting
	{Code: "dashboard:view", Name: "View Dashboard"},
	{Code: "report:view", Name: "View Report"},
	{Code: "report:export", Name: "Export Report"},
	// Scans (MASTER_ADMIN/ADMIN only)
	{Code: "scan:run", Name: "Run Notification Scan"},
}

// StaffPrivilegeCodes is the subset granted to the STAFF role by the seeder.
var StaffPrivilegeCodes = []string{
	"material:view",
	"stock:view",
	"asset:view",
	"borrow:view",
	"borrow:create",
	"borrow:return",
	"purchase:view",
	"purchase:create",
	"dashboard:view",
}
