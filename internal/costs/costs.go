// =============================================================================
// Incidencias Export - Cost Computation
// =============================================================================
//
// Cost math runs on decimals, not floats: bucket amounts and totals land in
// a payroll workbook and must add up exactly. Entry-side floats are
// converted once at the boundary of this package.
//
// The account buckets mirror the Spanish payroll accounts the company bills
// incidents to:
//
//   73     plus de sustitución
//   72     incentivos
//   70_71  festivos y fines de semana
//   74     plus de nocturnidad
//
// A record's base amount bills to the bucket its motive maps to; the 74
// bucket always carries the night amount regardless of motive.
//
// =============================================================================

package costs

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/incidencias-export/internal/incidencia"
	"github.com/ginjaninja78/incidencias-export/internal/maestros"
)

// BucketCode identifies a payroll account bucket.
type BucketCode string

const (
	Bucket73   BucketCode = "73"
	Bucket72   BucketCode = "72"
	Bucket7071 BucketCode = "70_71"
	Bucket74   BucketCode = "74"
)

// DefaultSSMultiplier is the employer social-security overhead applied to
// hour-based amounts when no configuration overrides it.
var DefaultSSMultiplier = decimal.NewFromFloat(1.3195)

// AccountBucket maps an account description from the motive sheet to its
// bucket code. Unknown descriptions report ok=false.
func AccountBucket(desc string) (BucketCode, bool) {
	d := strings.TrimSpace(strings.ToLower(desc))
	switch {
	case strings.Contains(d, "70/71"):
		return Bucket7071, true
	case strings.HasPrefix(d, "73"):
		return Bucket73, true
	case strings.HasPrefix(d, "72"):
		return Bucket72, true
	case strings.HasPrefix(d, "74"):
		return Bucket74, true
	}
	return "", false
}

// BucketMap folds the motive sheet into motive -> bucket. Motives whose
// account description maps to no bucket are left out.
func BucketMap(rows []maestros.MotiveRow) map[string]BucketCode {
	m := make(map[string]BucketCode, len(rows))
	for _, r := range rows {
		if b, ok := AccountBucket(r.AccountDesc); ok {
			m[r.Motive] = b
		}
	}
	return m
}

// Amounts are the derived money values of one record.
type Amounts struct {
	Base      decimal.Decimal // Hours * HourlyRate
	Night     decimal.Decimal // NightHours * NightRate
	Transfers decimal.Decimal

	B73   decimal.Decimal
	B72   decimal.Decimal
	B7071 decimal.Decimal
	B74   decimal.Decimal

	// Total is (Base + Night) * ss + Transfers; transfers are already euro
	// amounts and carry no social-security overhead.
	Total decimal.Decimal
}

// Compute derives the amounts for one record. buckets maps motives to
// account buckets (see BucketMap); ss is the social-security multiplier.
func Compute(rec incidencia.Record, buckets map[string]BucketCode, ss decimal.Decimal) Amounts {
	a := Amounts{
		Base:      mul(rec.Hours, rec.HourlyRate),
		Night:     mul(rec.NightHours, rec.NightRate),
		Transfers: decimal.NewFromFloat(rec.Transfers),
	}

	switch buckets[rec.Reason] {
	case Bucket73:
		a.B73 = a.Base
	case Bucket72:
		a.B72 = a.Base
	case Bucket7071:
		a.B7071 = a.Base
	}
	// Night work always bills to 74, whatever the motive says.
	a.B74 = a.Night

	a.Total = a.Base.Add(a.Night).Mul(ss).Add(a.Transfers)
	return a
}

// Totals aggregates the exportable records of a session.
type Totals struct {
	Records   int
	Base      decimal.Decimal
	Night     decimal.Decimal
	Transfers decimal.Decimal

	// Simple is Base + Night + Transfers, without overhead.
	Simple decimal.Decimal

	// WithSS is (Base + Night) * ss + Transfers.
	WithSS decimal.Decimal
}

// Sum aggregates the valid records only; invalid rows never count toward
// money totals.
func Sum(records []incidencia.Record, ss decimal.Decimal) Totals {
	var t Totals
	for i := range records {
		if !records[i].IsValid() {
			continue
		}
		t.Records++
		t.Base = t.Base.Add(mul(records[i].Hours, records[i].HourlyRate))
		t.Night = t.Night.Add(mul(records[i].NightHours, records[i].NightRate))
		t.Transfers = t.Transfers.Add(decimal.NewFromFloat(records[i].Transfers))
	}
	t.Simple = t.Base.Add(t.Night).Add(t.Transfers)
	t.WithSS = t.Base.Add(t.Night).Mul(ss).Add(t.Transfers)
	return t
}

func mul(a, b float64) decimal.Decimal {
	return decimal.NewFromFloat(a).Mul(decimal.NewFromFloat(b))
}
