package insights

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/ohmnow/finsight/backend/internal/model"
)

// seasonalSwingThreshold is the materiality floor: the gap between a
// category's highest and lowest nonzero multiplier must exceed it for the
// category to be reported.
const seasonalSwingThreshold = 0.5

// DetectSeasonalPatterns aggregates expense spend by category and calendar
// month and returns, for categories with material seasonal variation, a
// 12-element sequence of seasonal multipliers (month spend over the
// category's average monthly spend, January first).
func DetectSeasonalPatterns(transactions []model.Transaction) map[string][12]float64 {
	monthlySpend := make(map[string]*[12]float64)
	for _, txn := range transactions {
		if !txn.IsExpense() {
			continue
		}
		months, ok := monthlySpend[txn.Category]
		if !ok {
			months = &[12]float64{}
			monthlySpend[txn.Category] = months
		}
		months[int(txn.Date.Month())-1] += math.Abs(txn.Amount)
	}

	profiles := make(map[string][12]float64)

	for category, months := range monthlySpend {
		var total float64
		for _, spend := range months {
			total += spend
		}
		average := total / 12
		if average == 0 {
			continue
		}

		var multipliers [12]float64
		maxMultiplier := 0.0
		minNonzero := math.MaxFloat64
		for i, spend := range months {
			multipliers[i] = spend / average
			if multipliers[i] > maxMultiplier {
				maxMultiplier = multipliers[i]
			}
			if multipliers[i] > 0 && multipliers[i] < minNonzero {
				minNonzero = multipliers[i]
			}
		}
		if minNonzero == math.MaxFloat64 {
			continue
		}
		if maxMultiplier-minNonzero <= seasonalSwingThreshold {
			continue
		}
		profiles[category] = multipliers
	}

	return profiles
}

// SeasonalInsights renders the seasonal profiles into human-readable
// summaries naming each category's peak and low months and classifying the
// strength of the peak.
func SeasonalInsights(transactions []model.Transaction) []model.SeasonalInsight {
	profiles := DetectSeasonalPatterns(transactions)

	categories := make([]string, 0, len(profiles))
	for category := range profiles {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	insights := make([]model.SeasonalInsight, 0, len(categories))
	for _, category := range categories {
		multipliers := profiles[category]

		peakMonth, lowMonth := 0, -1
		lowValue := math.MaxFloat64
		for i, m := range multipliers {
			if m > multipliers[peakMonth] {
				peakMonth = i
			}
			if m > 0 && m < lowValue {
				lowValue = m
				lowMonth = i
			}
		}
		if lowMonth < 0 {
			continue
		}

		peak := multipliers[peakMonth]
		level := "moderate"
		switch {
		case peak > 2:
			level = "high"
		case peak > 1.5:
			level = "elevated"
		}

		peakName := time.Month(peakMonth + 1).String()
		lowName := time.Month(lowMonth + 1).String()

		insights = append(insights, model.SeasonalInsight{
			Category:       category,
			PeakMonth:      peakName,
			LowMonth:       lowName,
			PeakMultiplier: peak,
			Level:          level,
			Description: fmt.Sprintf("%s spending shows %s seasonality: %s runs %.1fx the monthly average, with the quietest month being %s.",
				category, level, peakName, peak, lowName),
		})
	}

	return insights
}
