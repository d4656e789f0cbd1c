package models

import "fmt"

// Market identifies a golf betting market.
type Market string

const (
	MarketWin              Market = "win"
	MarketTop5             Market = "top_5"
	MarketTop10            Market = "top_10"
	MarketTop20            Market = "top_20"
	MarketMakeCut          Market = "make_cut"
	MarketMissCut          Market = "miss_cut"
	MarketFirstRoundLeader Market = "first_round_leader"
)

// AllMarkets lists every supported market in scan order.
var AllMarkets = []Market{
	MarketWin,
	MarketTop5,
	MarketTop10,
	MarketTop20,
	MarketMakeCut,
	MarketMissCut,
	MarketFirstRoundLeader,
}

// marketDirections maps each market to the sign applied to a mental form
// adjustment. Miss-cut is inverted: a player in poor mental shape is MORE
// likely to miss the cut, so a negative score must push the probability up.
var marketDirections = map[Market]float64{
	MarketWin:              1,
	MarketTop5:             1,
	MarketTop10:            1,
	MarketTop20:            1,
	MarketMakeCut:          1,
	MarketMissCut:          -1,
	MarketFirstRoundLeader: 1,
}

// ParseMarket validates a market code at the input boundary. Unknown codes
// are rejected rather than passed through.
func ParseMarket(code string) (Market, error) {
	m := Market(code)
	if _, ok := marketDirections[m]; !ok {
		return "", fmt.Errorf("unknown market code: %q", code)
	}
	return m, nil
}

// Valid reports whether the market is one of the supported codes.
func (m Market) Valid() bool {
	_, ok := marketDirections[m]
	return ok
}

// Direction returns the sign applied to mental form adjustments for this
// market: +1 for all markets except miss_cut, which is -1.
func (m Market) Direction() float64 {
	if d, ok := marketDirections[m]; ok {
		return d
	}
	return 1
}

func (m Market) String() string {
	return string(m)
}
