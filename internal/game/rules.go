// internal/game/rules.go
package game

import (
	"fmt"
	"math"
)

// TableRules defines optional settings that modify standard play.
type TableRules struct {
	HandSize int `json:"handSize"` // card slots per player; 0 keeps each player's current capacity
	MaxBet   int `json:"maxBet"`   // largest accepted wager; 0 means no limit
}

// Update will update the table rules with the new rules provided.
// If a rule is not set or defined, it will be ignored, and the old value will persist.
func (rules *TableRules) Update(newRules map[string]interface{}) error {
	assignInt := func(field *int, key string) error {
		val, exists := newRules[key]
		if !exists || val == nil {
			return nil
		}
		// JSON numbers decode as float64
		var n int
		switch v := val.(type) {
		case float64:
			if v != math.Trunc(v) || v < math.MinInt32 || v > math.MaxInt32 {
				return fmt.Errorf("invalid value for %s: %v", key, v)
			}
			n = int(v)
		case int:
			n = v
		default:
			return fmt.Errorf("invalid type for %s", key)
		}
		if n < 0 {
			return fmt.Errorf("%s must be non-negative", key)
		}
		*field = n
		return nil
	}

	if err := assignInt(&rules.HandSize, "handSize"); err != nil {
		return err
	}
	if err := assignInt(&rules.MaxBet, "maxBet"); err != nil {
		return err
	}
	return nil
}

// ParseRules converts a map of rules to a TableRules struct, starting from current.
func ParseRules(rules map[string]interface{}, current TableRules) (TableRules, error) {
	tableRules := current
	err := tableRules.Update(rules)
	return tableRules, err
}
