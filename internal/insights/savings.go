package insights

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/ohmnow/finsight/backend/internal/model"
)

const maxOpportunities = 10

// holidayCategories get the year-end seasonal-reduction heuristic.
var holidayCategories = map[string]bool{
	"Entertainment": true,
	"Shopping":      true,
	"Food":          true,
	"Travel":        true,
}

// categorySpend aggregates one category's expense activity.
type categorySpend struct {
	total     float64
	count     int
	merchants map[string]bool
}

// FindSavingsOpportunities scores categories against a set of heuristics and
// returns up to ten ranked recommendations. Budgets are optional; an empty
// list simply suppresses budget-overrun opportunities. The caller supplies
// now so the holiday-season heuristic stays deterministic and testable.
func FindSavingsOpportunities(transactions []model.Transaction, budgets []model.Budget, now time.Time) []model.SavingsOpportunity {
	spend := make(map[string]*categorySpend)
	for _, txn := range transactions {
		if !txn.IsExpense() {
			continue
		}
		cs, ok := spend[txn.Category]
		if !ok {
			cs = &categorySpend{merchants: make(map[string]bool)}
			spend[txn.Category] = cs
		}
		cs.total += math.Abs(txn.Amount)
		cs.count++
		cs.merchants[ExtractMerchantName(txn.Description)] = true
	}

	budgetByCategory := make(map[string]float64)
	for _, b := range budgets {
		budgetByCategory[b.Category] = b.Amount
	}

	var opportunities []model.SavingsOpportunity

	// Budget overruns.
	for category, cs := range spend {
		budget, ok := budgetByCategory[category]
		if !ok || cs.total <= budget {
			continue
		}
		overrun := cs.total - budget
		priority := model.PriorityLow
		if overrun > 0.5*budget {
			priority = model.PriorityHigh
		} else if overrun > 0.2*budget {
			priority = model.PriorityMedium
		}
		opportunities = append(opportunities, model.SavingsOpportunity{
			Category:         category,
			PotentialSavings: overrun,
			Recommendation:   fmt.Sprintf("Spending exceeded your %s budget by $%.2f. Review recent purchases to get back on track.", category, overrun),
			Priority:         priority,
		})
	}

	// 15% reduction on the three highest-spending categories.
	for _, category := range topSpendingCategories(spend, 3) {
		total := spend[category].total
		if total <= 100 {
			continue
		}
		priority := model.PriorityLow
		if total > 500 {
			priority = model.PriorityHigh
		} else if total > 200 {
			priority = model.PriorityMedium
		}
		opportunities = append(opportunities, model.SavingsOpportunity{
			Category:         category,
			PotentialSavings: total * 0.15,
			Recommendation:   fmt.Sprintf("%s is one of your top spending categories. A 15%% reduction would save $%.2f.", category, total*0.15),
			Priority:         priority,
		})
	}

	// Many small transactions suggest bulk-buying savings.
	for category, cs := range spend {
		if cs.count <= 10 || cs.total/float64(cs.count) >= 50 {
			continue
		}
		opportunities = append(opportunities, model.SavingsOpportunity{
			Category:         category,
			PotentialSavings: cs.total * 0.10,
			Recommendation:   fmt.Sprintf("You made %d small %s purchases. Bundling or buying in bulk could save about 10%%.", cs.count, category),
			Priority:         model.PriorityLow,
		})
	}

	// Spend spread across many merchants suggests consolidation savings.
	for category, cs := range spend {
		if len(cs.merchants) <= 5 || cs.total <= 200 {
			continue
		}
		opportunities = append(opportunities, model.SavingsOpportunity{
			Category:         category,
			PotentialSavings: cs.total * 0.08,
			Recommendation:   fmt.Sprintf("%s spending is spread across %d merchants. Consolidating providers could save about 8%%.", category, len(cs.merchants)),
			Priority:         model.PriorityLow,
		})
	}

	// Year-end holiday season: discretionary categories tend to spike.
	if now.Month() == time.November || now.Month() == time.December {
		for category, cs := range spend {
			if !holidayCategories[category] || cs.total <= 300 {
				continue
			}
			opportunities = append(opportunities, model.SavingsOpportunity{
				Category:         category,
				PotentialSavings: cs.total * 0.20,
				Recommendation:   fmt.Sprintf("Holiday-season %s spending is elevated. Setting a gift and outings budget could cut it by 20%%.", category),
				Priority:         model.PriorityMedium,
			})
		}
	}

	return rankOpportunities(opportunities)
}

// topSpendingCategories returns up to n category names ordered by total
// expense descending.
func topSpendingCategories(spend map[string]*categorySpend, n int) []string {
	categories := make([]string, 0, len(spend))
	for category := range spend {
		categories = append(categories, category)
	}
	sort.Slice(categories, func(i, j int) bool {
		if spend[categories[i]].total != spend[categories[j]].total {
			return spend[categories[i]].total > spend[categories[j]].total
		}
		return categories[i] < categories[j]
	})
	if len(categories) > n {
		categories = categories[:n]
	}
	return categories
}

// rankOpportunities removes duplicate (category, recommendation) pairs, sorts
// by priority then potential savings, and truncates to the result cap.
func rankOpportunities(opportunities []model.SavingsOpportunity) []model.SavingsOpportunity {
	type dedupeKey struct {
		category       string
		recommendation string
	}
	seen := make(map[dedupeKey]bool)
	unique := opportunities[:0]
	for _, opp := range opportunities {
		key := dedupeKey{opp.Category, opp.Recommendation}
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, opp)
	}

	sort.Slice(unique, func(i, j int) bool {
		if unique[i].Priority.Rank() != unique[j].Priority.Rank() {
			return unique[i].Priority.Rank() > unique[j].Priority.Rank()
		}
		return unique[i].PotentialSavings > unique[j].PotentialSavings
	})

	if len(unique) > maxOpportunities {
		unique = unique[:maxOpportunities]
	}
	return unique
}
