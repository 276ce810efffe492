package optimize

import "github.com/Veraticus/spice-insights/internal/model"

// Class is one kind of spending the recommender targets.
type Class int

// Opportunity classes.
const (
	ClassDelivery Class = iota
	ClassSubscriptions
	ClassShopping
)

type classSpec struct {
	opportunityType string
	category        string
	aliases         []string // lower case
	floor           float64
	reduction       float64
	confidence      float64
}

var classes = map[Class]classSpec{
	ClassDelivery: {
		opportunityType: model.OpportunityReduceDelivery,
		category:        model.CategoryFoodDelivery,
		aliases:         []string{"food delivery", "food_delivery", "delivery", "takeout"},
		floor:           50,
		reduction:       0.30,
		confidence:      0.8,
	},
	ClassSubscriptions: {
		opportunityType: model.OpportunitySubscriptions,
		category:        model.CategorySubscriptions,
		aliases:         []string{"subscriptions", "subscription", "streaming", "digital subscriptions"},
		floor:           20,
		reduction:       0.25,
		confidence:      0.85,
	},
	ClassShopping: {
		opportunityType: model.OpportunityReduceShopping,
		category:        model.CategoryShopping,
		aliases:         []string{"shopping", "general shopping", "general merchandise", "retail"},
		floor:           100,
		reduction:       0.15,
		confidence:      0.7,
	},
}

var classOrder = []Class{ClassDelivery, ClassSubscriptions, ClassShopping}

var strategies = map[model.PersonalityType]map[Class]string{
	model.PersonalitySaver: {
		ClassDelivery:      "Cook one extra dinner at home each week and put the delivery money straight into savings.",
		ClassSubscriptions: "Audit every subscription and cancel anything you have not opened in the last month.",
		ClassShopping:      "Apply a 48-hour rule to non-essential purchases and track what you did not buy.",
	},
	model.PersonalitySpender: {
		ClassDelivery:      "Pick two favorite delivery nights a week and enjoy them guilt-free; cook the rest.",
		ClassSubscriptions: "Rotate streaming services month to month instead of paying for all of them at once.",
		ClassShopping:      "Set a monthly fun-money allowance for shopping and stop when it runs out.",
	},
	model.PersonalityPlanner: {
		ClassDelivery:      "Add a weekly meal plan and grocery order to your calendar to replace planned deliveries.",
		ClassSubscriptions: "Put renewal dates on your calendar and review each one before it renews.",
		ClassShopping:      "Keep a running wishlist and buy only items that stay on it for two weeks.",
	},
	model.PersonalityImpulse: {
		ClassDelivery:      "Delete delivery apps from your home screen so ordering takes a deliberate extra step.",
		ClassSubscriptions: "Turn off one-click trials and remove saved cards from streaming accounts.",
		ClassShopping:      "Unsubscribe from retail emails and remove saved payment methods from shopping sites.",
	},
	model.PersonalityConvenience: {
		ClassDelivery:      "Switch some deliveries to a meal-kit or batch-cooking service that costs less per meal.",
		ClassSubscriptions: "Bundle overlapping services into a single plan with one bill.",
		ClassShopping:      "Use auto-replenish for essentials only and skip browsing-driven purchases.",
	},
}

// personalityFit is how receptive each personality is to each change.
var personalityFit = map[model.PersonalityType]map[Class]float64{
	model.PersonalitySaver:       {ClassDelivery: 0.9, ClassSubscriptions: 0.9, ClassShopping: 0.8},
	model.PersonalitySpender:     {ClassDelivery: 0.4, ClassSubscriptions: 0.5, ClassShopping: 0.3},
	model.PersonalityPlanner:     {ClassDelivery: 0.7, ClassSubscriptions: 0.8, ClassShopping: 0.7},
	model.PersonalityImpulse:     {ClassDelivery: 0.5, ClassSubscriptions: 0.6, ClassShopping: 0.4},
	model.PersonalityConvenience: {ClassDelivery: 0.3, ClassSubscriptions: 0.6, ClassShopping: 0.6},
}

var difficulty = map[model.PersonalityType]map[Class]model.Difficulty{
	model.PersonalitySaver: {
		ClassDelivery: model.DifficultyEasy, ClassSubscriptions: model.DifficultyEasy, ClassShopping: model.DifficultyEasy,
	},
	model.PersonalitySpender: {
		ClassDelivery: model.DifficultyMedium, ClassSubscriptions: model.DifficultyEasy, ClassShopping: model.DifficultyComplex,
	},
	model.PersonalityPlanner: {
		ClassDelivery: model.DifficultyEasy, ClassSubscriptions: model.DifficultyEasy, ClassShopping: model.DifficultyMedium,
	},
	model.PersonalityImpulse: {
		ClassDelivery: model.DifficultyMedium, ClassSubscriptions: model.DifficultyEasy, ClassShopping: model.DifficultyComplex,
	},
	model.PersonalityConvenience: {
		ClassDelivery: model.DifficultyComplex, ClassSubscriptions: model.DifficultyEasy, ClassShopping: model.DifficultyMedium,
	},
}
