package pool

import (
	"math/big"
)

// rankWeightsBps is the fixed prize split across ranks 1..5.
var rankWeightsBps = []int64{4000, 2500, 1500, 1200, 800}

var bpsDenominator = big.NewInt(10000)

// SplitEven divides a budget across k categories: base share each, with the
// integer remainder distributed as +1 to the first remainder categories in
// order. The shares always sum back to the budget exactly.
func SplitEven(budget *big.Int, k int) []*big.Int {
	base, rem := new(big.Int).QuoRem(budget, big.NewInt(int64(k)), new(big.Int))
	remainder := rem.Int64()

	shares := make([]*big.Int, k)
	for i := range shares {
		shares[i] = new(big.Int).Set(base)
		if int64(i) < remainder {
			shares[i].Add(shares[i], big.NewInt(1))
		}
	}
	return shares
}

// SplitRanks divides a pot across the five monthly ranks by the fixed weight
// table, pushing the integer remainder to rank 1 so the payouts recover the
// pot exactly.
func SplitRanks(pot *big.Int) []*big.Int {
	payouts := make([]*big.Int, len(rankWeightsBps))
	distributed := new(big.Int)
	for i, weight := range rankWeightsBps {
		share := new(big.Int).Mul(pot, big.NewInt(weight))
		share.Quo(share, bpsDenominator)
		payouts[i] = share
		distributed.Add(distributed, share)
	}

	remainder := new(big.Int).Sub(pot, distributed)
	payouts[0].Add(payouts[0], remainder)
	return payouts
}
