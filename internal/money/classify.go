package money

import (
	"math"

	"github.com/shopspring/decimal"
)

const (
	// PackSize is the number of units in one pack.
	PackSize = 6
	// PalletSize is the number of units on one pallet (48 packs).
	PalletSize = 48 * PackSize
	// HalfPallet is the largest count still reported in single units.
	HalfPallet = PalletSize / 2
)

// quotientPlaces is the precision of the value/price division.
const quotientPlaces = 20

// floatSlack is the relative gap, a few float64 ULPs wide, under which a
// quotient just below a whole number counts as that number. It absorbs
// noise such as 144*p/p = 143.99999999999997 without rounding up real
// amounts like 39.899999999 at 39.9.
var floatSlack = decimal.New(1, -15)

// Tier is the reward tier of an amount: Single, Pack or Bulk.
type Tier interface {
	tier()
}

// Single is a count of whole units. Count 0 means not even one.
type Single struct {
	Count int
}

// Pack is a count of packs.
type Pack struct {
	Packs int
}

// Bulk is a count of whole pallets, with the pack count alongside.
type Bulk struct {
	Pallets int
	Packs   int
}

func (Single) tier() {}

func (Pack) tier() {}

func (Bulk) tier() {}

// Units returns how many whole units value buys at unitPrice. Non-positive or
// non-finite inputs yield 0.
func Units(value, unitPrice float64) int {
	if !finitePositive(value) || !finitePositive(unitPrice) {
		return 0
	}
	exact := decimal.NewFromFloat(value).DivRound(decimal.NewFromFloat(unitPrice), quotientPlaces)
	q := exact.Floor()
	if next := q.Add(decimal.NewFromInt(1)); next.Sub(exact).LessThanOrEqual(next.Mul(floatSlack)) {
		q = next
	}
	if q.GreaterThan(decimal.NewFromInt(math.MaxInt32)) {
		return math.MaxInt32
	}
	return int(q.IntPart())
}

// Classify maps an amount to its tier at the given unit price:
//
//	0         -> Single(0)
//	1..144    -> Single(n)
//	145..288  -> Pack(n/6)
//	289..     -> Bulk(n/288, n/6)
func Classify(value, unitPrice float64) Tier {
	n := Units(value, unitPrice)
	switch {
	case n <= HalfPallet:
		return Single{Count: n}
	case n <= PalletSize:
		return Pack{Packs: n / PackSize}
	default:
		return Bulk{Pallets: n / PalletSize, Packs: n / PackSize}
	}
}

func finitePositive(f float64) bool {
	return f > 0 && !math.IsInf(f, 0) && !math.IsNaN(f)
}
