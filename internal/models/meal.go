package models

import "time"

// FoodItem is one detected or user-edited entry of a meal photo.
type FoodItem struct {
	Name       string   `json:"name"`
	Grams      float64  `json:"grams"`
	Kcal       float64  `json:"kcal"`
	Protein    float64  `json:"protein"`
	Carbs      float64  `json:"carbs"`
	Fat        float64  `json:"fat"`
	Confidence *float64 `json:"confidence,omitempty"`
}

type NutritionTotal struct {
	Kcal    float64 `json:"kcal"`
	Protein float64 `json:"protein"`
	Carbs   float64 `json:"carbs"`
	Fat     float64 `json:"fat"`
}

type DetectionResult struct {
	Items []FoodItem     `json:"items"`
	Total NutritionTotal `json:"total"`
}

// Adjustment records a post-save edit of a single item field.
type Adjustment struct {
	ItemIndex int       `json:"itemIndex"`
	ItemName  string    `json:"itemName"`
	Field     string    `json:"field"`
	Previous  float64   `json:"previous"`
	Value     float64   `json:"value"`
	At        time.Time `json:"at"`
}

type Meal struct {
	ID          string           `gorm:"primaryKey" json:"id"`
	UserID      uint             `gorm:"not null;index:idx_meals_user_created,priority:1" json:"-"`
	CreatedAt   time.Time        `gorm:"not null;index:idx_meals_user_created,priority:2" json:"createdAt"`
	PhotoRef    string           `gorm:"not null" json:"photoRef"`
	Detection   *DetectionResult `gorm:"serializer:json" json:"ai"`
	Notes       *string          `json:"notes"`
	Adjustments []Adjustment     `gorm:"serializer:json" json:"manualAdjustments"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// Totals returns the stored detection total, or zeros when the meal has no
// detection data.
func (meal Meal) Totals() NutritionTotal {
	if meal.Detection == nil {
		return NutritionTotal{}
	}
	return meal.Detection.Total
}

// Draft is a detection under review that has not been saved as a meal yet.
type Draft struct {
	ID        string          `gorm:"primaryKey" json:"id"`
	UserID    uint            `gorm:"not null;index" json:"-"`
	PhotoRef  string          `gorm:"not null" json:"photoRef"`
	Detection DetectionResult `gorm:"serializer:json;not null" json:"ai"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}
