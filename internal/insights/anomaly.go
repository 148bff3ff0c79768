package insights

import (
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/ohmnow/finsight/backend/internal/model"
)

const (
	// minCategorySamples is the evidence floor for per-category statistics.
	minCategorySamples = 3

	anomalyThreshold        = 2.0
	mediumSeverityThreshold = 2.5
	highSeverityThreshold   = 3.0

	// uniqueMerchantMinCategorySize gates the unique-merchant escalation: a
	// one-off purchase at an unseen merchant is only suspicious once the
	// category has enough history.
	uniqueMerchantMinCategorySize = 5
)

// DetectAnomalies flags expense transactions whose magnitude is a statistical
// outlier within their category. Categories with fewer than three expense
// samples or zero variance produce no anomalies; that is an expected
// no-signal case, not an error. Results are sorted by descending deviation.
func DetectAnomalies(transactions []model.Transaction) []model.SpendingAnomaly {
	type categoryStats struct {
		magnitudes []float64
		expenses   []model.Transaction
		merchants  map[string]int
	}

	byCategory := make(map[string]*categoryStats)
	for _, txn := range transactions {
		if !txn.IsExpense() {
			continue
		}
		cs, ok := byCategory[txn.Category]
		if !ok {
			cs = &categoryStats{merchants: make(map[string]int)}
			byCategory[txn.Category] = cs
		}
		cs.magnitudes = append(cs.magnitudes, math.Abs(txn.Amount))
		cs.expenses = append(cs.expenses, txn)
		cs.merchants[ExtractMerchantName(txn.Description)]++
	}

	var anomalies []model.SpendingAnomaly

	for category, cs := range byCategory {
		if len(cs.magnitudes) < minCategorySamples {
			continue
		}
		categoryMean := mean(cs.magnitudes)
		categoryStdDev := stdDev(cs.magnitudes, categoryMean)
		if categoryStdDev == 0 {
			continue
		}

		for _, txn := range cs.expenses {
			magnitude := math.Abs(txn.Amount)
			zScore := (magnitude - categoryMean) / categoryStdDev
			deviation := math.Abs(zScore)
			if deviation <= anomalyThreshold {
				continue
			}

			var severity model.Severity
			switch {
			case deviation > highSeverityThreshold:
				severity = model.SeverityHigh
			case deviation > mediumSeverityThreshold:
				severity = model.SeverityMedium
			default:
				severity = model.SeverityLow
			}

			direction := "above"
			if zScore < 0 {
				direction = "below"
			}
			reason := fmt.Sprintf("%s spend of $%.2f is %.1f standard deviations %s the category average of $%.2f",
				category, magnitude, deviation, direction, categoryMean)

			merchant := ExtractMerchantName(txn.Description)
			if cs.merchants[merchant] == 1 && len(cs.expenses) > uniqueMerchantMinCategorySize {
				severity = severity.Escalate()
				reason += "; first purchase at this merchant"
			}

			anomalies = append(anomalies, model.SpendingAnomaly{
				ID:          uuid.New().String(),
				Transaction: txn,
				Deviation:   deviation,
				Reason:      reason,
				Severity:    severity,
			})
		}
	}

	sort.Slice(anomalies, func(i, j int) bool {
		return anomalies[i].Deviation > anomalies[j].Deviation
	})

	return anomalies
}
