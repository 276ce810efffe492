package optimize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-insights/internal/common"
	"github.com/Veraticus/spice-insights/internal/model"
)

func TestRecommend_ClassesAboveFloor(t *testing.T) {
	r := NewRecommender(nil)

	result, err := r.Recommend(Request{
		UserID: "u1",
		CategoryTotals: map[string]float64{
			"Food Delivery": 200,
			"subscriptions": 40,
			"SHOPPING":      300,
			"Housing":       1200,
		},
		Profile: model.PersonalityProfile{Primary: model.PersonalitySaver},
	})
	require.NoError(t, err)
	require.Len(t, result.Opportunities, 3)

	byType := make(map[string]model.OptimizationOpportunity)
	for _, o := range result.Opportunities {
		byType[o.OpportunityType] = o
	}

	delivery := byType[model.OpportunityReduceDelivery]
	assert.InDelta(t, 60.0, delivery.PotentialMonthlySavings, 1e-9)
	assert.InDelta(t, 0.9, delivery.PersonalityFit, 1e-9)
	assert.Equal(t, model.DifficultyEasy, delivery.ImplementationDifficulty)
	assert.Equal(t, model.CategoryFoodDelivery, delivery.Category)
	assert.Contains(t, delivery.Description, "30% cut")

	assert.InDelta(t, 10.0, byType[model.OpportunitySubscriptions].PotentialMonthlySavings, 1e-9)
	assert.InDelta(t, 45.0, byType[model.OpportunityReduceShopping].PotentialMonthlySavings, 1e-9)
	assert.InDelta(t, 115.0, result.TotalPotentialSavings, 1e-9)

	// 60*0.9=54 > 45*0.8=36 > 10*0.9=9
	assert.Equal(t, model.OpportunityReduceDelivery, result.Opportunities[0].OpportunityType)
	assert.Equal(t, model.OpportunityReduceShopping, result.Opportunities[1].OpportunityType)
	assert.Equal(t, model.OpportunitySubscriptions, result.Opportunities[2].OpportunityType)
}

func TestRecommend_FloorsAreStrict(t *testing.T) {
	result, err := NewRecommender(nil).Recommend(Request{
		CategoryTotals: map[string]float64{
			"Food Delivery": 50,
			"Subscriptions": 20,
			"Shopping":      100,
		},
		Profile: model.PersonalityProfile{Primary: model.PersonalityPlanner},
	})
	require.NoError(t, err)
	assert.Empty(t, result.Opportunities, "no zero-value opportunities")
	assert.Zero(t, result.TotalPotentialSavings)
}

func TestRecommend_AliasesAreSummed(t *testing.T) {
	result, err := NewRecommender(nil).Recommend(Request{
		CategoryTotals: map[string]float64{"Delivery": 30, "takeout": 30},
		Profile:        model.PersonalityProfile{Primary: model.PersonalityConvenience},
	})
	require.NoError(t, err)
	require.Len(t, result.Opportunities, 1)
	assert.InDelta(t, 18.0, result.Opportunities[0].PotentialMonthlySavings, 1e-9)
	assert.Equal(t, model.DifficultyComplex, result.Opportunities[0].ImplementationDifficulty)
}

func TestRecommend_PersonalityChangesFitAndText(t *testing.T) {
	totals := map[string]float64{"Shopping": 400}
	descriptions := make(map[string]bool)

	for _, p := range model.PersonalityTypes() {
		result, err := NewRecommender(nil).Recommend(Request{
			CategoryTotals: totals,
			Profile:        model.PersonalityProfile{Primary: p},
		})
		require.NoError(t, err, p)
		require.Len(t, result.Opportunities, 1)

		o := result.Opportunities[0]
		assert.InDelta(t, personalityFit[p][ClassShopping], o.PersonalityFit, 1e-9)
		assert.GreaterOrEqual(t, o.PersonalityFit, 0.0)
		assert.LessOrEqual(t, o.PersonalityFit, 1.0)
		descriptions[o.Description] = true
	}
	assert.Len(t, descriptions, len(model.PersonalityTypes()))
}

func TestRecommend_MergesAdditional(t *testing.T) {
	duplicate := model.OptimizationOpportunity{
		OpportunityType:         model.OpportunityDuplicateServices,
		PotentialMonthlySavings: 9.99,
		PersonalityFit:          0.5,
	}

	result, err := NewRecommender(nil).Recommend(Request{
		CategoryTotals: map[string]float64{"Subscriptions": 30},
		Profile:        model.PersonalityProfile{Primary: model.PersonalitySpender},
		Additional:     []model.OptimizationOpportunity{duplicate},
	})
	require.NoError(t, err)
	require.Len(t, result.Opportunities, 2)

	// 9.99*0.5 > 7.50*0.5
	assert.Equal(t, model.OpportunityDuplicateServices, result.Opportunities[0].OpportunityType)
	assert.InDelta(t, 17.49, result.TotalPotentialSavings, 1e-9)
}

func TestRecommend_Validation(t *testing.T) {
	tests := []struct {
		name    string
		profile model.PersonalityProfile
		field   string
	}{
		{"missing primary", model.PersonalityProfile{}, "personality_profile.primary"},
		{"unknown primary", model.PersonalityProfile{Primary: "gambler"}, "personality_profile.primary"},
		{"unknown secondary", model.PersonalityProfile{Primary: model.PersonalitySaver, Secondary: "yolo"}, "personality_profile.secondary"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRecommender(nil).Recommend(Request{Profile: tt.profile})
			require.ErrorIs(t, err, common.ErrValidation)

			var verr *common.ValidationError
			require.ErrorAs(t, err, &verr)
			require.Len(t, verr.Issues, 1)
			assert.Equal(t, tt.field, verr.Issues[0].Field)
		})
	}
}

func TestRank_TieBreaks(t *testing.T) {
	opps := []model.OptimizationOpportunity{
		{OpportunityType: "b", PotentialMonthlySavings: 10, PersonalityFit: 0.5},
		{OpportunityType: "a", PotentialMonthlySavings: 10, PersonalityFit: 0.5},
		{OpportunityType: "c", PotentialMonthlySavings: 20, PersonalityFit: 0.25},
	}
	Rank(opps)

	assert.Equal(t, "c", opps[0].OpportunityType, "equal score, larger savings first")
	assert.Equal(t, "a", opps[1].OpportunityType)
	assert.Equal(t, "b", opps[2].OpportunityType)
}

func TestTablesCoverEveryPersonality(t *testing.T) {
	for _, p := range model.PersonalityTypes() {
		for _, class := range classOrder {
			assert.NotEmpty(t, strategies[p][class])
			assert.NotEmpty(t, difficulty[p][class])
			assert.Contains(t, personalityFit[p], class)
		}
	}
}
