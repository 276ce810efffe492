package budget

import (
	"fmt"
	"strconv"

	"github.com/Veraticus/spice-insights/internal/model"
)

// AlertType names an alert after the threshold it crossed: warning_75,
// alert_90, exceeded_100.
func AlertType(threshold float64) string {
	return fmt.Sprintf("%s_%s", alertPrefix(threshold), strconv.FormatFloat(threshold, 'f', -1, 64))
}

func alertPrefix(threshold float64) string {
	switch stateFor(threshold) {
	case model.BudgetExceeded:
		return "exceeded"
	case model.BudgetAlerting:
		return "alert"
	default:
		return "warning"
	}
}

func severityFor(threshold float64) model.Severity {
	switch stateFor(threshold) {
	case model.BudgetExceeded:
		return model.SeverityHigh
	case model.BudgetAlerting:
		return model.SeverityMedium
	default:
		return model.SeverityLow
	}
}

// personalityPhrases holds a phrasing per personality for the warning, alert
// and exceeded levels. Each takes the category and the remaining amount.
var personalityPhrases = map[model.PersonalityType]map[model.BudgetState]string{
	model.PersonalitySaver: {
		model.BudgetWarning:  "You're on track but %s is filling up. Holding back now keeps $%.2f in savings.",
		model.BudgetAlerting: "Only $%[2].2f left for %[1]s. A no-spend week here protects your savings goal.",
		model.BudgetExceeded: "%s is over budget. Trim next month's plan or move money from a category with room.",
	},
	model.PersonalitySpender: {
		model.BudgetWarning:  "%s is filling up. You still have $%.2f to enjoy, so pick what matters most.",
		model.BudgetAlerting: "Heads up: $%[2].2f left in %[1]s. Save it for the thing you'll really love.",
		model.BudgetExceeded: "%s went past the limit. No guilt, just rebalance from another category.",
	},
	model.PersonalityPlanner: {
		model.BudgetWarning:  "%s has reached its first checkpoint with $%.2f remaining. Review the rest of the month's plan.",
		model.BudgetAlerting: "$%[2].2f remains in %[1]s. Adjust upcoming planned purchases to stay inside the limit.",
		model.BudgetExceeded: "%s exceeded its planned limit. Update the plan and reallocate for the rest of the period.",
	},
	model.PersonalityImpulse: {
		model.BudgetWarning:  "Pause before the next %s purchase. $%.2f left; wait a day before buying.",
		model.BudgetAlerting: "Only $%[2].2f left in %[1]s. Try removing saved cards to slow things down.",
		model.BudgetExceeded: "%s is over. Take a break from this category for the rest of the month.",
	},
	model.PersonalityConvenience: {
		model.BudgetWarning:  "%s is getting close. $%.2f left; a cheaper default option could stretch it.",
		model.BudgetAlerting: "$%[2].2f left in %[1]s. Set up one easy swap, like a bundled plan, to finish the month.",
		model.BudgetExceeded: "%s is over budget. Automate a smaller limit so it takes care of itself next month.",
	},
}

func buildAlert(c model.BudgetCategory, threshold float64, profile *model.PersonalityProfile) model.BudgetAlert {
	level := stateFor(threshold)

	var message string
	switch level {
	case model.BudgetExceeded:
		message = fmt.Sprintf("%s budget exceeded: $%.2f spent of $%.2f (%.1f%%).",
			c.CategoryName, c.CurrentSpent, c.MonthlyLimit, c.PercentageUsed)
	case model.BudgetAlerting:
		message = fmt.Sprintf("%s budget at %.1f%%: $%.2f of $%.2f spent, $%.2f remaining.",
			c.CategoryName, c.PercentageUsed, c.CurrentSpent, c.MonthlyLimit, c.RemainingBudget)
	default:
		message = fmt.Sprintf("%s budget passed %s%%: $%.2f of $%.2f spent.",
			c.CategoryName, strconv.FormatFloat(threshold, 'f', -1, 64), c.CurrentSpent, c.MonthlyLimit)
	}

	personalityMessage := message
	if profile != nil {
		phrase := personalityPhrases[profile.Primary][level]
		if level == model.BudgetExceeded {
			personalityMessage = fmt.Sprintf(phrase, c.CategoryName)
		} else {
			personalityMessage = fmt.Sprintf(phrase, c.CategoryName, c.RemainingBudget)
		}
	}

	return model.BudgetAlert{
		CategoryName:            c.CategoryName,
		AlertType:               AlertType(threshold),
		Severity:                severityFor(threshold),
		Message:                 message,
		PersonalityAwareMessage: personalityMessage,
		Threshold:               threshold,
		PercentageUsed:          c.PercentageUsed,
	}
}
