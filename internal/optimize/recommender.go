// Package optimize turns monthly category totals into ranked,
// personality-tailored savings opportunities.
package optimize

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/Veraticus/spice-insights/internal/common"
	"github.com/Veraticus/spice-insights/internal/model"
)

// Request is one recommendation call. Additional opportunities, such as
// those from subscription detection, are ranked together with the generated ones.
type Request struct {
	CategoryTotals map[string]float64
	Profile        model.PersonalityProfile
	UserID         string
	Additional     []model.OptimizationOpportunity
}

// Result is the ranked opportunity list.
type Result struct {
	Opportunities         []model.OptimizationOpportunity `json:"optimization_opportunities"`
	TotalPotentialSavings float64                         `json:"total_potential_savings"`
}

// Recommender is stateless.
type Recommender struct {
	logger *slog.Logger
}

// NewRecommender creates a Recommender.
func NewRecommender(logger *slog.Logger) *Recommender {
	return &Recommender{logger: common.LoggerOrDefault(logger)}
}

// Recommend builds one opportunity per class whose monthly total is above
// the class floor. An unknown primary personality is a validation error.
func (r *Recommender) Recommend(req Request) (*Result, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	personality := req.Profile.Primary

	totals := classTotals(req.CategoryTotals)
	opportunities := make([]model.OptimizationOpportunity, 0, len(classOrder)+len(req.Additional))

	for _, class := range classOrder {
		spec := classes[class]
		total := totals[class]
		if total <= spec.floor {
			continue
		}

		savings := common.RoundMoney(total * spec.reduction)
		opportunities = append(opportunities, model.OptimizationOpportunity{
			OpportunityType: spec.opportunityType,
			Description: fmt.Sprintf("%s You spend $%.2f/month on %s; a %d%% cut saves $%.2f/month.",
				strategies[personality][class], total, strings.ToLower(spec.category),
				int(math.Round(spec.reduction*100)), savings),
			Category:                 spec.category,
			ImplementationDifficulty: difficulty[personality][class],
			PotentialMonthlySavings:  savings,
			ConfidenceScore:          spec.confidence,
			PersonalityFit:           personalityFit[personality][class],
		})
	}
	opportunities = append(opportunities, req.Additional...)

	Rank(opportunities)

	savings := make([]float64, len(opportunities))
	for i, o := range opportunities {
		savings[i] = o.PotentialMonthlySavings
	}
	result := &Result{
		Opportunities:         opportunities,
		TotalPotentialSavings: common.SumMoney(savings...),
	}

	r.logger.Info("Generated optimization opportunities",
		"user_id", req.UserID,
		"personality", personality,
		"count", len(opportunities),
		"total_savings", result.TotalPotentialSavings)

	return result, nil
}

// Rank orders opportunities by savings weighted by personality fit, then by
// savings, then by type.
func Rank(opportunities []model.OptimizationOpportunity) {
	sort.SliceStable(opportunities, func(i, j int) bool {
		a, b := opportunities[i], opportunities[j]
		scoreA := a.PotentialMonthlySavings * a.PersonalityFit
		scoreB := b.PotentialMonthlySavings * b.PersonalityFit
		if scoreA != scoreB {
			return scoreA > scoreB
		}
		if a.PotentialMonthlySavings != b.PotentialMonthlySavings {
			return a.PotentialMonthlySavings > b.PotentialMonthlySavings
		}
		return a.OpportunityType < b.OpportunityType
	})
}

func validate(req Request) error {
	verr := &common.ValidationError{}
	if _, ok := personalityFit[req.Profile.Primary]; !ok {
		verr.Add(-1, "personality_profile.primary", fmt.Sprintf("unknown personality type %q", req.Profile.Primary))
	}
	if req.Profile.Secondary != "" {
		if _, ok := personalityFit[req.Profile.Secondary]; !ok {
			verr.Add(-1, "personality_profile.secondary", fmt.Sprintf("unknown personality type %q", req.Profile.Secondary))
		}
	}

	names := make([]string, 0, len(req.CategoryTotals))
	for name := range req.CategoryTotals {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if v := req.CategoryTotals[name]; math.IsNaN(v) || math.IsInf(v, 0) {
			verr.Add(-1, "category_totals."+name, "total must be a finite number")
		}
	}
	return verr.OrNil()
}

// classTotals sums category totals into classes by case-insensitive alias.
func classTotals(categoryTotals map[string]float64) map[Class]float64 {
	lookup := make(map[string]Class)
	for class, spec := range classes {
		for _, alias := range spec.aliases {
			lookup[alias] = class
		}
	}

	acc := common.NewMoneyAccumulator()
	for name, total := range categoryTotals {
		class, ok := lookup[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			continue
		}
		acc.Add(classes[class].category, total)
	}

	totals := make(map[Class]float64, len(classes))
	for _, class := range classOrder {
		totals[class] = acc.Total(classes[class].category)
	}
	return totals
}
