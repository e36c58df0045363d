package fees

import (
	"math/big"

	"memebattles/internal/league/model"

	"go.uber.org/zap"
)

var bpsDenominator = big.NewInt(10000)

// Inverter recovers pre-fee gross trade amounts from the net amounts the
// indexer records. The chain computes fees on the gross amount with floor
// rounding, so the continuous inverse is only a candidate; the exact gross is
// found by probing a small window around it.
type Inverter struct {
	logs           *zap.SugaredLogger
	protocolFeeBps int64
	leagueFeeBps   int64
}

func NewInverter(logs *zap.SugaredLogger, protocolFeeBps, leagueFeeBps int64) *Inverter {
	return &Inverter{
		logs:           logs,
		protocolFeeBps: protocolFeeBps,
		leagueFeeBps:   leagueFeeBps,
	}
}

// Fee returns floor(gross * feeBps / 10000).
func Fee(gross *big.Int, feeBps int64) *big.Int {
	fee := new(big.Int).Mul(gross, big.NewInt(feeBps))
	return fee.Quo(fee, bpsDenominator)
}

// NetFromGross applies the forward on-chain fee formula: a buyer pays
// gross plus fee, a seller receives gross minus fee.
func NetFromGross(gross *big.Int, side model.TradeSide, feeBps int64) *big.Int {
	fee := Fee(gross, feeBps)
	if side == model.SideBuy {
		return new(big.Int).Add(gross, fee)
	}
	return new(big.Int).Sub(gross, fee)
}

// Gross inverts the forward formula for a recorded net amount. For any net
// actually produced by the on-chain formula at the configured rate the probe
// window finds an exact preimage; if none matches (a fee-rate change mid
// history) the continuous candidate is used and the gap is logged.
func (inv *Inverter) Gross(net *big.Int, side model.TradeSide) *big.Int {
	candidate := grossCandidate(net, side, inv.protocolFeeBps)

	for delta := int64(-2); delta <= 2; delta++ {
		probe := new(big.Int).Add(candidate, big.NewInt(delta))
		if probe.Sign() < 0 {
			continue
		}
		if NetFromGross(probe, side, inv.protocolFeeBps).Cmp(net) == 0 {
			return probe
		}
	}

	inv.logs.Warnw("fee inversion found no exact gross, using approximate candidate",
		"net", net.String(),
		"side", side,
		"fee_bps", inv.protocolFeeBps)
	return candidate
}

// LeagueFee returns the League's cut of the protocol fee for a recorded net
// amount: floor(gross * leagueFeeBps / 10000).
func (inv *Inverter) LeagueFee(net *big.Int, side model.TradeSide) *big.Int {
	return Fee(inv.Gross(net, side), inv.leagueFeeBps)
}

func grossCandidate(net *big.Int, side model.TradeSide, feeBps int64) *big.Int {
	scaled := new(big.Int).Mul(net, bpsDenominator)
	if side == model.SideBuy {
		// floor(net * 10000 / (10000 + f))
		return scaled.Quo(scaled, big.NewInt(10000+feeBps))
	}

	// ceil(net * 10000 / (10000 - f))
	divisor := big.NewInt(10000 - feeBps)
	quo, rem := new(big.Int).QuoRem(scaled, divisor, new(big.Int))
	if rem.Sign() != 0 {
		quo.Add(quo, big.NewInt(1))
	}
	return quo
}
