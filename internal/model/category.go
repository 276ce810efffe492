package model

// Category names produced by the default rule table.
const (
	CategoryHousing           = "Housing"
	CategoryFoodDelivery      = "Food Delivery"
	CategoryFoodDining        = "Food & Dining"
	CategoryTransportation    = "Transportation"
	CategoryShopping          = "Shopping"
	CategorySubscriptions     = "Subscriptions"
	CategoryEntertainment     = "Entertainment"
	CategoryHealthFitness     = "Health & Fitness"
	CategoryFinancialServices = "Financial Services"

	// CategoryUncategorized is assigned when no stage could resolve a category.
	CategoryUncategorized = "Uncategorized"
)
