package insights

import (
	"math"
	"sort"

	"github.com/ohmnow/finsight/backend/internal/model"
)

const (
	// minOccurrences is the evidence floor: fewer transactions for a
	// merchant/category pair cannot establish a cadence.
	minOccurrences = 3

	// maxIntervalSpread is the maximum allowed ratio of interval standard
	// deviation to mean interval for a group to count as recurring.
	maxIntervalSpread = 0.30
)

// merchantCategory keys a transaction group by display merchant and category.
type merchantCategory struct {
	merchant string
	category string
}

// DetectRecurringTransactions finds merchant/category groups whose charge
// intervals are regular enough to indicate a recurring payment. Results are
// sorted by descending confidence. Empty input yields an empty result.
func DetectRecurringTransactions(transactions []model.Transaction) []model.RecurringPattern {
	groups := make(map[merchantCategory][]model.Transaction)
	for _, txn := range transactions {
		key := merchantCategory{
			merchant: ExtractMerchantName(txn.Description),
			category: txn.Category,
		}
		groups[key] = append(groups[key], txn)
	}

	var patterns []model.RecurringPattern

	for key, group := range groups {
		if len(group) < minOccurrences {
			continue
		}

		sort.Slice(group, func(i, j int) bool {
			return group[i].Date.Before(group[j].Date)
		})

		intervals := make([]float64, 0, len(group)-1)
		for i := 1; i < len(group); i++ {
			days := group[i].Date.Sub(group[i-1].Date).Hours() / 24
			intervals = append(intervals, days)
		}

		meanInterval := mean(intervals)
		spread := stdDev(intervals, meanInterval)

		if meanInterval < 1 || spread > maxIntervalSpread*meanInterval {
			continue
		}

		var totalAmount float64
		for _, txn := range group {
			totalAmount += math.Abs(txn.Amount)
		}

		// Regularity rewards a tight interval spread; the sample-size bonus
		// tops out at 0.3.
		regularity := 1 - spread/meanInterval
		sizeBonus := math.Min(0.3, 0.05*float64(len(group)))
		confidence := clamp01(regularity + sizeBonus)

		last := group[len(group)-1]

		patterns = append(patterns, model.RecurringPattern{
			Merchant:         key.merchant,
			Category:         key.category,
			AverageAmount:    totalAmount / float64(len(group)),
			Frequency:        classifyFrequency(meanInterval),
			NextExpectedDate: last.Date.AddDate(0, 0, int(math.Round(meanInterval))),
			Confidence:       confidence,
		})
	}

	sort.Slice(patterns, func(i, j int) bool {
		if patterns[i].Confidence != patterns[j].Confidence {
			return patterns[i].Confidence > patterns[j].Confidence
		}
		return patterns[i].Merchant < patterns[j].Merchant
	})

	return patterns
}

// classifyFrequency maps a mean interval in days onto the closed frequency
// set using fixed breakpoints.
func classifyFrequency(meanIntervalDays float64) model.Frequency {
	switch {
	case meanIntervalDays <= 2:
		return model.FrequencyDaily
	case meanIntervalDays <= 9:
		return model.FrequencyWeekly
	case meanIntervalDays <= 16:
		return model.FrequencyBiweekly
	case meanIntervalDays <= 35:
		return model.FrequencyMonthly
	default:
		return model.FrequencyYearly
	}
}
