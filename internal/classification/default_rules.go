package classification

import "github.com/Veraticus/spice-insights/internal/model"

// DefaultRules returns the built-in category rules, ordered housing, food,
// transportation, shopping, entertainment, health, financial services.
func DefaultRules() []Rule {
	return []Rule{
		// Housing
		{
			Name:        "Rent",
			Category:    model.CategoryHousing,
			Subcategory: "Rent",
			Regex:       `\b(RENT|APARTMENTS?|LEASING OFFICE|PROPERTY\s*(MGMT|MANAGEMENT))\b`,
			Priority:    100,
		},
		{
			Name:        "Mortgage",
			Category:    model.CategoryHousing,
			Subcategory: "Mortgage",
			Regex:       `\b(MORTGAGE|HOME\s*LOAN|HOA\s*DUES|HOMEOWNERS\s*ASSOC)\b`,
			Priority:    99,
		},
		{
			Name:        "Utilities",
			Category:    model.CategoryHousing,
			Subcategory: "Utilities",
			Regex:       `\b(ELECTRIC|PG&E|CON\s*ED|WATER\s*(UTILITY|DEPT)|GAS\s*&\s*ELECTRIC|COMCAST|XFINITY|SPECTRUM|VERIZON\s*FIOS|INTERNET)\b`,
			Priority:    98,
		},

		// Food
		{
			Name:        "Food Delivery",
			Category:    model.CategoryFoodDelivery,
			Subcategory: "Delivery",
			Regex:       `\b(DOORDASH|DD\s*DOORDASH|UBER\s*EATS|GRUBHUB|POSTMATES|SEAMLESS|CAVIAR|GOPUFF|INSTACART)\b`,
			Priority:    90,
		},
		{
			Name:        "Coffee",
			Category:    model.CategoryFoodDining,
			Subcategory: "Coffee",
			Regex:       `\b(STARBUCKS|DUNKIN|PEETS|BLUE\s*BOTTLE|COFFEE|CAFE|ESPRESSO)\b`,
			Priority:    86,
		},
		{
			Name:        "Groceries",
			Category:    model.CategoryFoodDining,
			Subcategory: "Groceries",
			Regex:       `\b(WHOLE\s*FOODS|TRADER\s*JOES|SAFEWAY|KROGER|PUBLIX|ALDI|WEGMANS|GROCERY|GROCERIES|SUPERMARKET|MARKET\s*BASKET)\b`,
			Priority:    85,
		},
		{
			Name:        "Restaurants",
			Category:    model.CategoryFoodDining,
			Subcategory: "Restaurants",
			Regex:       `\b(RESTAURANT|MCDONALDS|CHIPOTLE|SUBWAY|PIZZA|BURGER|TACO|SUSHI|GRILL|DINER|BISTRO|KITCHEN|BBQ|STEAKHOUSE)\b`,
			Priority:    84,
		},

		// Transportation
		{
			Name:        "Rideshare",
			Category:    model.CategoryTransportation,
			Subcategory: "Rideshare",
			Regex:       `\b(UBER|LYFT|TAXI|CAB\s*CO)\b`,
			Priority:    80,
		},
		{
			Name:        "Fuel",
			Category:    model.CategoryTransportation,
			Subcategory: "Fuel",
			Regex:       `\b(SHELL|CHEVRON|EXXON|MOBIL|ARCO|SUNOCO|GAS\s*STATION|FUEL)\b`,
			Priority:    79,
		},
		{
			Name:        "Transit",
			Category:    model.CategoryTransportation,
			Subcategory: "Transit & Parking",
			Regex:       `\b(PARKING|TOLL|E-?ZPASS|FASTRAK|METRO|TRANSIT|BART|MTA|AMTRAK|AIRLINES?)\b`,
			Priority:    78,
		},

		// Shopping
		{
			Name:        "Retail",
			Category:    model.CategoryShopping,
			Subcategory: "General Merchandise",
			Regex:       `\b(AMAZON|AMZN|TARGET|WALMART|BEST\s*BUY|EBAY|ETSY|IKEA|MACYS|NORDSTROM|COSTCO|HOME\s*DEPOT|LOWES)\b`,
			Priority:    70,
		},

		// Entertainment
		{
			Name:        "Streaming",
			Category:    model.CategorySubscriptions,
			Subcategory: "Streaming",
			Regex:       `\b(NETFLIX|HULU|DISNEY\s*(PLUS|\+)?|HBO|SPOTIFY|APPLE\s*MUSIC|PANDORA|YOUTUBE\s*(PREMIUM|MUSIC)|PARAMOUNT|PEACOCK|AUDIBLE|SIRIUS\s*XM|PATREON)\b`,
			Priority:    65,
		},
		{
			Name:        "Events & Games",
			Category:    model.CategoryEntertainment,
			Subcategory: "Events & Games",
			Regex:       `\b(CINEMA|THEATER|THEATRE|AMC|REGAL|TICKETMASTER|STUBHUB|STEAM|PLAYSTATION|XBOX|NINTENDO|BOWLING|CONCERT)\b`,
			Priority:    60,
		},

		// Health
		{
			Name:        "Fitness",
			Category:    model.CategoryHealthFitness,
			Subcategory: "Fitness",
			Regex:       `\b(GYM|FITNESS|PELOTON|EQUINOX|YOGA|CLASSPASS|CROSSFIT)\b`,
			Priority:    51,
		},
		{
			Name:        "Medical",
			Category:    model.CategoryHealthFitness,
			Subcategory: "Medical",
			Regex:       `\b(PHARMACY|CVS|WALGREENS|RITE\s*AID|DOCTOR|DENTAL|DENTIST|CLINIC|HOSPITAL|MEDICAL|OPTOMETR\w*)\b`,
			Priority:    50,
		},

		// Financial services
		{
			Name:        "Bank Fees",
			Category:    model.CategoryFinancialServices,
			Subcategory: "Fees",
			Regex:       `\b(OVERDRAFT|SERVICE\s*(FEE|CHG)|MONTHLY\s*FEE|WIRE\s*FEE|ATM\s*FEE|INTEREST\s*CHARGE|LATE\s*FEE)\b`,
			Priority:    41,
		},
		{
			Name:        "Insurance & Loans",
			Category:    model.CategoryFinancialServices,
			Subcategory: "Insurance & Loans",
			Regex:       `\b(INSURANCE|GEICO|STATE\s*FARM|PROGRESSIVE|ALLSTATE|LOAN\s*(PMT|PAYMENT)|STUDENT\s*LOAN|CREDIT\s*CARD\s*(PMT|PAYMENT))\b`,
			Priority:    40,
		},
	}
}
