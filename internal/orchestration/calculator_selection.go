package orchestration

import (
	"github.com/agbru/factcalc/internal/factorial"
)

// GetCalculatorsToRun determines which calculators should be executed for the
// given algorithm selection. "all" returns every registered calculator in
// sorted key order; an unknown key returns nil.
//
// Parameters:
//   - algo: "all" or a registry key.
//   - factory: The calculator factory to retrieve implementations from.
//
// Returns:
//   - []factorial.Calculator: A slice of calculators to execute.
func GetCalculatorsToRun(algo string, factory factorial.CalculatorFactory) []factorial.Calculator {
	if algo == "all" {
		keys := factory.List()
		calculators := make([]factorial.Calculator, 0, len(keys))
		for _, k := range keys {
			if calc, err := factory.Get(k); err == nil {
				calculators = append(calculators, calc)
			}
		}
		return calculators
	}
	if calc, err := factory.Get(algo); err == nil {
		return []factorial.Calculator{calc}
	}
	return nil
}
