package recommend

import (
	"fmt"
	"strings"

	"menu-recommender/internal/pkg/common"
)

// Hunger 用餐時的飢餓程度
type Hunger string

const (
	HungerLight    Hunger = "light"
	HungerModerate Hunger = "moderate"
	HungerHearty   Hunger = "hearty"
)

// Timing 用餐時機
type Timing string

const (
	TimingPreWorkout  Timing = "pre_workout"
	TimingPostWorkout Timing = "post_workout"
	TimingRegular     Timing = "regular"
)

// Goal 使用者的體重目標
type Goal string

const (
	GoalLose     Goal = "lose"
	GoalGain     Goal = "gain"
	GoalMaintain Goal = "maintain"
)

// DietaryLaw 宗教飲食規範
type DietaryLaw string

const (
	DietaryLawNone   DietaryLaw = "none"
	DietaryLawHalal  DietaryLaw = "halal"
	DietaryLawKosher DietaryLaw = "kosher"
)

// UserProfile 使用者飲食與健康設定，每次請求帶入，核心不負責保存
type UserProfile struct {
	Age                     int        `json:"age,omitempty"`
	WeightKg                float64    `json:"weight_kg,omitempty"`
	HeightCm                float64    `json:"height_cm,omitempty"`
	ActivityLevel           string     `json:"activity_level,omitempty"`
	Goal                    Goal       `json:"goal,omitempty"`
	DietaryPreferences      []string   `json:"dietary_preferences,omitempty"`
	Allergies               []string   `json:"allergies,omitempty"`
	DietaryLaws             DietaryLaw `json:"dietary_laws,omitempty"`
	PreferredProteinSources []string   `json:"preferred_protein_sources,omitempty"`
	TasteAndPrepPreferences []string   `json:"taste_and_prep_preferences,omitempty"`
	HealthFlags             []string   `json:"health_flags,omitempty"`
	DoNotEat                []string   `json:"do_not_eat,omitempty"`
}

// HasDiet 是否宣告了某個基礎飲食（vegan / vegetarian / pescatarian）
func (p UserProfile) HasDiet(diet string) bool {
	return containsFold(p.DietaryPreferences, diet)
}

// HasHealthFlag 是否有某個健康旗標
func (p UserProfile) HasHealthFlag(flag string) bool {
	return containsFold(p.HealthFlags, flag)
}

// HasTaste 是否有某個口味偏好
func (p UserProfile) HasTaste(pref string) bool {
	return containsFold(p.TasteAndPrepPreferences, pref)
}

func containsFold(list []string, target string) bool {
	for _, v := range list {
		if strings.EqualFold(strings.TrimSpace(v), target) {
			return true
		}
	}
	return false
}

// Context 單次掃描的情境，用完即丟
type Context struct {
	Hunger Hunger `json:"hunger"`
	Timing Timing `json:"timing"`
}

// WithDefaults 補上預設值：moderate / regular
func (c Context) WithDefaults() Context {
	if c.Hunger == "" {
		c.Hunger = HungerModerate
	}
	if c.Timing == "" {
		c.Timing = TimingRegular
	}
	return c
}

// Validate 驗證情境欄位（空值視為預設）
func (c Context) Validate() error {
	switch c.Hunger {
	case "", HungerLight, HungerModerate, HungerHearty:
	default:
		return common.NewValidationError(fmt.Sprintf("invalid hunger %q: want light, moderate or hearty", c.Hunger))
	}
	switch c.Timing {
	case "", TimingPreWorkout, TimingPostWorkout, TimingRegular:
	default:
		return common.NewValidationError(fmt.Sprintf("invalid timing %q: want pre_workout, post_workout or regular", c.Timing))
	}
	return nil
}
