package dataset

import (
	"fmt"
	"math/rand"
)

// SplitOptions controls the optional training/validation split shared by
// the template converters.
type SplitOptions struct {
	// Fraction of records routed to the validation set, in [0, 1).
	Fraction float64
	// Seed makes the shuffle reproducible; ignored when nil.
	Seed *int64
}

func (o SplitOptions) validate() error {
	if o.Fraction < 0 {
		return fmt.Errorf("validation split must be 0 or greater, got %g", o.Fraction)
	}
	if o.Fraction >= 1.0 {
		return fmt.Errorf("validation split must be less than 1.0, got %g", o.Fraction)
	}
	return nil
}

// split partitions records into train and validation sets. Both halves keep
// the original document order; only membership is randomized.
func split(records []rawRecord, o SplitOptions) (train, val []rawRecord, err error) {
	if err := o.validate(); err != nil {
		return nil, nil, err
	}
	if o.Fraction == 0 {
		return records, nil, nil
	}

	rng := rand.New(rand.NewSource(rand.Int63()))
	if o.Seed != nil {
		rng = rand.New(rand.NewSource(*o.Seed))
	}

	indices := rng.Perm(len(records))
	valSize := int(float64(len(records)) * o.Fraction)
	valSet := make(map[int]bool, valSize)
	for _, idx := range indices[:valSize] {
		valSet[idx] = true
	}

	train = make([]rawRecord, 0, len(records)-valSize)
	val = make([]rawRecord, 0, valSize)
	for i, rec := range records {
		if valSet[i] {
			val = append(val, rec)
		} else {
			train = append(train, rec)
		}
	}
	return train, val, nil
}
