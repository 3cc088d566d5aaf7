package permission

import "authgate/internal/model"

// Seller service codes.
const (
	ServiceOrders    = "orders"
	ServiceProducts  = "products"
	ServiceAnalytics = "analytics"
	ServicePayouts   = "payouts"
	ServiceSettings  = "settings"
)

// KnownServices lists every seller service code the dashboard exposes.
var KnownServices = []string{ServiceOrders, ServiceProducts, ServiceAnalytics, ServicePayouts, ServiceSettings}

var planDefaults = map[model.SubscriptionPlan][]string{
	model.PlanFree:       {ServiceOrders},
	model.PlanBasic:      {ServiceOrders, ServiceProducts},
	model.PlanPro:        {ServiceOrders, ServiceProducts, ServiceAnalytics},
	model.PlanEnterprise: {ServiceOrders, ServiceProducts, ServiceAnalytics, ServicePayouts, ServiceSettings},
}

// PlanDefaults returns the default service set for plan. Unknown plans get FREE's defaults.
func PlanDefaults(plan model.SubscriptionPlan) Set {
	codes, ok := planDefaults[plan]
	if !ok {
		codes = planDefaults[model.PlanFree]
	}
	return NewSet(codes...)
}

// PlanDefaultsList is PlanDefaults as a sorted slice, for persisting into allowed_services.
func PlanDefaultsList(plan model.SubscriptionPlan) []string {
	return PlanDefaults(plan).Slice()
}
