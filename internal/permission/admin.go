package permission

// Admin permission codes checked on operator routes.
const (
	AdminRolesRead     = "roles.read"
	AdminRolesManage   = "roles.manage"
	AdminDomainsManage = "domains.manage"
	AdminSellersRead   = "sellers.read"
	AdminSellersManage = "sellers.manage"
	AdminAuditRead     = "audit.read"
)
