package payload

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/jellydator/validation"
)

// LeagueQuery carries the common query parameters of the read endpoints:
// chainId, period, and how many epochs back from the live one to look.
type LeagueQuery struct {
	ChainID  int64
	Period   string
	Offset   int
	Category string
}

func ParseLeagueQuery(values url.Values) (LeagueQuery, error) {
	chainID, err := strconv.ParseInt(values.Get("chainId"), 10, 64)
	if err != nil {
		return LeagueQuery{}, fmt.Errorf("parse chainId parameter: %w", err)
	}

	offset := 0
	if raw := values.Get("offset"); raw != "" {
		offset, err = strconv.Atoi(raw)
		if err != nil {
			return LeagueQuery{}, fmt.Errorf("parse offset parameter: %w", err)
		}
	}

	return LeagueQuery{
		ChainID:  chainID,
		Period:   values.Get("period"),
		Offset:   offset,
		Category: values.Get("category"),
	}, nil
}

func (q LeagueQuery) Validate() error {
	return validation.ValidateStruct(&q,
		validation.Field(&q.ChainID, validation.Required, validation.Min(1)),
		validation.Field(&q.Period, validation.Required, validation.In("weekly", "monthly")),
		validation.Field(&q.Offset, validation.Min(0), validation.Max(53)),
	)
}
