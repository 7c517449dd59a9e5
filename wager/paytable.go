package wager

import (
	"fmt"

	"github.com/spf13/viper"

	apperrors "github.com/oddsforge/wager-engine/errors"
)

// Paytable is a configured outcome→multiplier mapping. Multipliers
// are in hundredths; outcomes absent from the table pay zero.
type Paytable struct {
	OutcomeSpace int           `mapstructure:"outcome_space"`
	Multipliers  map[int]int64 `mapstructure:"multipliers"`
}

// MultiplierFor looks up the multiplier for an outcome.
func (p *Paytable) MultiplierFor(outcome int) int64 {
	return p.Multipliers[outcome]
}

// MaxMultiplier returns the largest multiplier in the table.
func (p *Paytable) MaxMultiplier() int64 {
	var max int64
	for _, m := range p.Multipliers {
		if m > max {
			max = m
		}
	}
	return max
}

// Validate checks table consistency before it is installed.
func (p *Paytable) Validate() error {
	if p.OutcomeSpace < 2 {
		return apperrors.New(apperrors.ErrConfigError, "paytable outcome space must be at least 2")
	}
	for outcome, multiplier := range p.Multipliers {
		if outcome < 0 || outcome >= p.OutcomeSpace {
			return apperrors.NewWithDebug(apperrors.ErrConfigError,
				"paytable outcome out of range",
				fmt.Sprintf("outcome=%d space=%d", outcome, p.OutcomeSpace))
		}
		if multiplier < 0 {
			return apperrors.NewWithDebug(apperrors.ErrConfigError,
				"paytable multiplier must be non-negative",
				fmt.Sprintf("outcome=%d multiplier=%d", outcome, multiplier))
		}
	}
	return nil
}

// LoadPaytable reads a paytable from a YAML file using Viper.
func LoadPaytable(filename string) (*Paytable, error) {
	v := viper.New()
	v.SetConfigFile(filename)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrConfigError,
			fmt.Sprintf("failed to read paytable file %s", filename))
	}

	var table Paytable
	if err := v.Unmarshal(&table); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrConfigError, "failed to unmarshal paytable")
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}
	return &table, nil
}
