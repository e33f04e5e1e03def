package billing

import (
	"sort"
	"time"
)

// Summary carries the scalar totals across the whole filtered set.
type Summary struct {
	TotalPayments int64 `json:"totalPayments"`
	TotalRefunds  int64 `json:"totalRefunds"`
	NetAmount     int64 `json:"netAmount"`
}

// Dataset is one chart series aligned with the report labels.
type Dataset struct {
	Label string  `json:"label"`
	Data  []int64 `json:"data"`
}

// Chart holds parallel arrays ready for rendering: one label per month
// bucket and one value per label in each dataset.
type Chart struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// Report is the month-bucketed aggregation result.
type Report struct {
	Summary Summary `json:"summary"`
	Chart   Chart   `json:"chartData"`
}

type monthKey struct {
	year  int
	month time.Month
}

func (k monthKey) label() string {
	return time.Date(k.year, k.month, 1, 0, 0, 0, 0, time.UTC).Format("Jan 2006")
}

type bucket struct {
	payments int64
	refunds  int64
}

// Aggregate folds transactions into a chronologically ordered monthly
// report. Filtering uses CreatedAt against [from, to] (either bound may be
// nil), while bucketing uses the calendar month of PaymentMonth. Buckets
// are ordered by (year, month), never by label text, since lexical month
// ordering is not chronological. The fold is pure: permuting the input
// yields an identical report.
func Aggregate(transactions []Transaction, from, to *time.Time) (*Report, error) {
	buckets := make(map[monthKey]*bucket)

	for _, tx := range transactions {
		if from != nil && tx.CreatedAt.Before(*from) {
			continue
		}
		if to != nil && tx.CreatedAt.After(*to) {
			continue
		}

		key := monthKey{year: tx.PaymentMonth.Year(), month: tx.PaymentMonth.Month()}
		b := buckets[key]
		if b == nil {
			b = &bucket{}
			buckets[key] = b
		}

		if tx.Amount >= 0 {
			b.payments += tx.Amount
		} else {
			b.refunds += -tx.Amount
		}
	}

	if len(buckets) == 0 {
		return nil, ErrNoTransactions
	}

	keys := make([]monthKey, 0, len(buckets))
	for key := range buckets {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].month < keys[j].month
	})

	report := &Report{
		Chart: Chart{
			Labels: make([]string, 0, len(keys)),
			Datasets: []Dataset{
				{Label: "Payments", Data: make([]int64, 0, len(keys))},
				{Label: "Refunds", Data: make([]int64, 0, len(keys))},
			},
		},
	}
	for _, key := range keys {
		b := buckets[key]
		report.Chart.Labels = append(report.Chart.Labels, key.label())
		report.Chart.Datasets[0].Data = append(report.Chart.Datasets[0].Data, b.payments)
		report.Chart.Datasets[1].Data = append(report.Chart.Datasets[1].Data, b.refunds)
		report.Summary.TotalPayments += b.payments
		report.Summary.TotalRefunds += b.refunds
	}
	report.Summary.NetAmount = report.Summary.TotalPayments - report.Summary.TotalRefunds

	return report, nil
}
