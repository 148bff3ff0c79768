package insights

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ohmnow/finsight/backend/internal/model"
)

func TestDetectAnomaliesFlagsLargeOutlier(t *testing.T) {
	var txns []model.Transaction
	for i := 0; i < 10; i++ {
		txns = append(txns, txn("Corner Cafe", "Food", -40, day(2025, 6, 1+i)))
	}
	outlier := txn("Gourmet Bistro", "Food", -200, day(2025, 6, 15))
	txns = append(txns, outlier)

	anomalies := DetectAnomalies(txns)
	require.Len(t, anomalies, 1)

	a := anomalies[0]
	assert.Equal(t, outlier.Description, a.Transaction.Description)
	assert.Greater(t, a.Deviation, 3.0)
	assert.Equal(t, model.SeverityHigh, a.Severity)
	assert.NotEmpty(t, a.Reason)
	assert.NotEmpty(t, a.ID)
}

func TestDetectAnomaliesIgnoresIncome(t *testing.T) {
	var txns []model.Transaction
	for i := 0; i < 10; i++ {
		txns = append(txns, txn("Corner Cafe", "Food", -40, day(2025, 6, 1+i)))
	}
	// Large positive amount is income, never an anomaly.
	txns = append(txns, txn("Payroll", "Food", 5000, day(2025, 6, 15)))

	assert.Empty(t, DetectAnomalies(txns))
}

func TestDetectAnomaliesTooFewSamples(t *testing.T) {
	txns := []model.Transaction{
		txn("Corner Cafe", "Food", -40, day(2025, 6, 1)),
		txn("Corner Cafe", "Food", -500, day(2025, 6, 2)),
	}

	assert.Empty(t, DetectAnomalies(txns))
}

func TestDetectAnomaliesZeroVariance(t *testing.T) {
	var txns []model.Transaction
	for i := 0; i < 6; i++ {
		txns = append(txns, txn("Gym Club", "Health", -25, day(2025, 6, 1+i)))
	}

	assert.Empty(t, DetectAnomalies(txns))
}

func TestDetectAnomaliesUniqueMerchantEscalation(t *testing.T) {
	// Build a category where the outlier's z-score lands just above the 2.0
	// threshold, at a merchant seen nowhere else in the category. With more
	// than five category transactions the severity escalates one level.
	base := []float64{-40, -40, -40, -40, -42, -38, -41, -39, -40, -40}
	var txns []model.Transaction
	for i, amount := range base {
		txns = append(txns, txn("Corner Cafe", "Food", amount, day(2025, 6, 1+i)))
	}
	outlier := txn("Gourmet Bistro", "Food", -43.5, day(2025, 6, 20))
	txns = append(txns, outlier)

	anomalies := DetectAnomalies(txns)
	require.Len(t, anomalies, 1)

	top := anomalies[0]
	require.Equal(t, "Gourmet Bistro", top.Transaction.Description)
	assert.Greater(t, top.Deviation, 2.0)
	assert.LessOrEqual(t, top.Deviation, 2.5)
	assert.Equal(t, model.SeverityMedium, top.Severity, "low escalates to medium for a unique merchant")
	assert.Contains(t, top.Reason, "first purchase at this merchant")
}

func TestDetectAnomaliesSortedByDeviation(t *testing.T) {
	var txns []model.Transaction
	for i := 0; i < 10; i++ {
		txns = append(txns, txn("Corner Cafe", "Food", -40, day(2025, 6, 1+i)))
		txns = append(txns, txn("City Parking", "Transport", -10, day(2025, 6, 1+i)))
	}
	txns = append(txns, txn("Gourmet Bistro", "Food", -200, day(2025, 6, 15)))
	txns = append(txns, txn("Airport Parking", "Transport", -90, day(2025, 6, 16)))

	anomalies := DetectAnomalies(txns)
	require.GreaterOrEqual(t, len(anomalies), 2)
	for i := 1; i < len(anomalies); i++ {
		assert.GreaterOrEqual(t, anomalies[i-1].Deviation, anomalies[i].Deviation)
	}
}

func TestDetectAnomaliesIdempotentModuloIDs(t *testing.T) {
	var txns []model.Transaction
	for i := 0; i < 10; i++ {
		txns = append(txns, txn("Corner Cafe", "Food", -40, day(2025, 6, 1+i)))
	}
	txns = append(txns, txn("Gourmet Bistro", "Food", -200, day(2025, 6, 15)))

	first := DetectAnomalies(txns)
	second := DetectAnomalies(txns)
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Transaction, second[i].Transaction)
		assert.Equal(t, first[i].Deviation, second[i].Deviation)
		assert.Equal(t, first[i].Severity, second[i].Severity)
		assert.Equal(t, first[i].Reason, second[i].Reason)
	}
}
