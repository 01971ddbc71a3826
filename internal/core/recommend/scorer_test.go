package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultWeightsSumToOne(t *testing.T) {
	assert.InDelta(t, 1.0, DefaultWeights.sum(), 1e-9)
}

func TestScoreItem_NeutralDish(t *testing.T) {
	s := ScoreItem(NewDish("House Special", ""), UserProfile{}, Context{})

	assert.True(t, s.MacrosEstimated)
	assert.InDelta(t, 0.34, s.Subscores.MacroFit, 1e-9)
	assert.InDelta(t, 1.0, s.Subscores.PortionFit, 1e-9)
	assert.InDelta(t, 0.5, s.Subscores.ProteinSourceMatch, 1e-9)
	assert.InDelta(t, 0.5, s.Subscores.TasteMatch, 1e-9)
	assert.InDelta(t, 0.5, s.Subscores.GoalAlignment, 1e-9)
	assert.InDelta(t, 1.0, s.Subscores.HealthGuardrails, 1e-9)
	assert.InDelta(t, 61.0, s.Raw, 1e-6)
	assert.LessOrEqual(t, len(s.Reasons), 3)
}

func TestScoreItem_RawWithinBounds(t *testing.T) {
	p := UserProfile{
		Goal:                    GoalLose,
		PreferredProteinSources: []string{"chicken", "fish"},
		TasteAndPrepPreferences: []string{"prefer_grilled", "avoid_fried"},
		HealthFlags:             []string{"diabetes", "high_cholesterol"},
	}
	dishes := []Dish{
		NewDish("Grilled Chicken Salad", "lean breast over greens"),
		NewDish("Fried Cheese Sticks", "with caramel dip"),
		NewDish("", ""),
	}
	for _, d := range dishes {
		s := ScoreItem(d, p, Context{Hunger: HungerHearty, Timing: TimingPostWorkout})
		assert.GreaterOrEqual(t, s.Raw, 0.0)
		assert.LessOrEqual(t, s.Raw, 100.0)
		assert.LessOrEqual(t, len(s.Reasons), 3)
	}
}

func TestMacroRatios(t *testing.T) {
	d := NewDish("Chicken Plate", "")
	d.Macros = &Macros{Protein: 40, Carbs: 20, Fat: 10}
	p, c, f, est := MacroRatios(d)
	assert.False(t, est)
	assert.InDelta(t, 160.0/330*100, p, 1e-9)
	assert.InDelta(t, 80.0/330*100, c, 1e-9)
	assert.InDelta(t, 90.0/330*100, f, 1e-9)

	p, c, f, est = MacroRatios(NewDish("Chicken Pasta", ""))
	assert.True(t, est)
	assert.InDelta(t, 40.0/140*100, p, 1e-9)
	assert.InDelta(t, 70.0/140*100, c, 1e-9)
	assert.InDelta(t, 30.0/140*100, f, 1e-9)
	assert.InDelta(t, 100, p+c+f, 1e-9)
}

func TestMacroFit_UsesTimingTargets(t *testing.T) {
	d := NewDish("Recovery Plate", "")
	// 35 / 40 / 22.5 kcal
	d.Macros = &Macros{Protein: 8.75, Carbs: 10, Fat: 2.5}

	post := ScoreItem(d, UserProfile{}, Context{Timing: TimingPostWorkout})
	assert.InDelta(t, 1.0, post.Subscores.MacroFit, 1e-9)
	assert.False(t, post.MacrosEstimated)

	pre := ScoreItem(d, UserProfile{}, Context{Timing: TimingPreWorkout})
	assert.InDelta(t, 0.34, pre.Subscores.MacroFit, 1e-9)

	regular := ScoreItem(d, UserProfile{}, Context{})
	assert.InDelta(t, 0.33, regular.Subscores.MacroFit, 1e-9)
}

func TestEstimatePortion(t *testing.T) {
	assert.Equal(t, PortionLarge, EstimatePortion(priced(NewDish("Steak", ""), 25)))
	assert.Equal(t, PortionSmall, EstimatePortion(priced(NewDish("Soup", ""), 8)))
	assert.Equal(t, PortionMedium, EstimatePortion(priced(NewDish("Curry", ""), 15)))
	assert.Equal(t, PortionLarge, EstimatePortion(NewDish("Hearty Stew", "")))
	assert.Equal(t, PortionSmall, EstimatePortion(NewDish("Garlic Bread", "a small side")))

	explicit := priced(NewDish("Tasting Plate", ""), 30)
	explicit.Portion = PortionSmall
	assert.Equal(t, PortionSmall, EstimatePortion(explicit))
}

func TestPortionFit(t *testing.T) {
	big := priced(NewDish("Ribeye", ""), 32)
	assert.InDelta(t, 1.0, ScoreItem(big, UserProfile{}, Context{Hunger: HungerHearty}).Subscores.PortionFit, 1e-9)
	assert.InDelta(t, 0.5, ScoreItem(big, UserProfile{}, Context{Hunger: HungerModerate}).Subscores.PortionFit, 1e-9)
	assert.InDelta(t, 0.0, ScoreItem(big, UserProfile{}, Context{Hunger: HungerLight}).Subscores.PortionFit, 1e-9)
}

func TestProteinSourceMatch(t *testing.T) {
	p := UserProfile{PreferredProteinSources: []string{"chicken", "fish"}}
	assert.InDelta(t, 0.5, ScoreItem(NewDish("Chicken Wrap", ""), p, Context{}).Subscores.ProteinSourceMatch, 1e-9)
	assert.InDelta(t, 1.0, ScoreItem(NewDish("Chicken and Salmon Platter", ""), p, Context{}).Subscores.ProteinSourceMatch, 1e-9)
	assert.InDelta(t, 0.0, ScoreItem(NewDish("Veggie Curry", ""), p, Context{}).Subscores.ProteinSourceMatch, 1e-9)
}

func TestTasteMatch(t *testing.T) {
	p := UserProfile{TasteAndPrepPreferences: []string{"prefer_grilled", "avoid_fried"}}

	grilled := ScoreItem(NewDish("Grilled Chicken", ""), p, Context{})
	assert.InDelta(t, 1.0, grilled.Subscores.TasteMatch, 1e-9)
	assert.Contains(t, grilled.Reasons, "Grilled not fried")

	fried := ScoreItem(NewDish("Fried Chicken", ""), p, Context{})
	assert.InDelta(t, 0.0, fried.Subscores.TasteMatch, 1e-9)

	spicy := UserProfile{TasteAndPrepPreferences: []string{"prefer_spicy"}}
	assert.InDelta(t, 0.0, ScoreItem(NewDish("Hot Dog", ""), spicy, Context{}).Subscores.TasteMatch, 1e-9)
	assert.InDelta(t, 1.0, ScoreItem(NewDish("Spicy Ramen", ""), spicy, Context{}).Subscores.TasteMatch, 1e-9)
}

func TestGoalAlignment(t *testing.T) {
	lose := UserProfile{Goal: GoalLose}
	assert.InDelta(t, 0.8, ScoreItem(NewDish("Grilled Salmon", ""), lose, Context{}).Subscores.GoalAlignment, 1e-9)
	assert.InDelta(t, 0.2, ScoreItem(NewDish("Fried Cheese", ""), lose, Context{}).Subscores.GoalAlignment, 1e-9)
	assert.InDelta(t, 0.8, ScoreItem(NewDish("Grilled Cheese", ""), lose, Context{}).Subscores.GoalAlignment, 1e-9)

	gain := UserProfile{Goal: GoalGain}
	assert.InDelta(t, 0.8, ScoreItem(NewDish("Beef Lasagna", ""), gain, Context{}).Subscores.GoalAlignment, 1e-9)
	assert.InDelta(t, 0.3, ScoreItem(NewDish("Side Salad", ""), gain, Context{}).Subscores.GoalAlignment, 1e-9)

	maintain := UserProfile{Goal: GoalMaintain}
	assert.InDelta(t, 0.5, ScoreItem(NewDish("Side Salad", ""), maintain, Context{}).Subscores.GoalAlignment, 1e-9)
}

func TestHealthGuardrails(t *testing.T) {
	d := NewDish("Fried Banana", "with caramel")
	assert.InDelta(t, 0.7, ScoreItem(d, UserProfile{HealthFlags: []string{"diabetes", "Diabetes"}}, Context{}).Subscores.HealthGuardrails, 1e-9)
	assert.InDelta(t, 0.42, ScoreItem(d, UserProfile{HealthFlags: []string{"diabetes", "high_cholesterol"}}, Context{}).Subscores.HealthGuardrails, 1e-9)
	assert.InDelta(t, 1.0, ScoreItem(d, UserProfile{HealthFlags: []string{"unknown_flag"}}, Context{}).Subscores.HealthGuardrails, 1e-9)
}

func TestReasons_TimingAndHunger(t *testing.T) {
	d := NewDish("Protein Bowl", "")
	d.Macros = &Macros{Protein: 8.75, Carbs: 10, Fat: 2.5}

	s := ScoreItem(d, UserProfile{}, Context{Hunger: HungerModerate, Timing: TimingPostWorkout})
	require.NotEmpty(t, s.Reasons)
	assert.Equal(t, "Great post-workout balance", s.Reasons[0])
	assert.Equal(t, []string{"Great post-workout balance", "Portion fits hunger", "Satisfying choice"}, s.Reasons)
}
