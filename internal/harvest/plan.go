package harvest

import (
	"errors"
	"fmt"
	"strings"
)

// ErrClauseTooLong reports an account whose clause cannot fit in any batch
// under the configured query length bound. This is a configuration error:
// silently dropping the account would break the coverage invariant.
var ErrClauseTooLong = errors.New("account clause exceeds query length bound")

// Batch is one OR-combined query covering a subset of tracked accounts,
// in their original configuration order.
type Batch struct {
	Accounts []string
	Query    string
}

// PlanBatches partitions accounts into query batches using greedy first-fit
// in input order. Every batch's composed query (clauses OR-joined plus the
// static suffix) fits within maxLen, and concatenating all batches' accounts
// reproduces the input exactly.
func PlanBatches(accounts []string, clauseTemplate, suffix string, maxLen int) ([]Batch, error) {
	if len(accounts) == 0 {
		return nil, fmt.Errorf("no tracked accounts configured")
	}
	if maxLen <= 0 {
		return nil, fmt.Errorf("query length bound must be > 0")
	}

	var batches []Batch
	var current []string

	compose := func(handles []string) string {
		clauses := make([]string, len(handles))
		for i, h := range handles {
			clauses[i] = fmt.Sprintf(clauseTemplate, h)
		}
		return strings.Join(clauses, " OR ") + suffix
	}

	for _, account := range accounts {
		if len(compose([]string{account})) > maxLen {
			return nil, fmt.Errorf("%w: %q", ErrClauseTooLong, account)
		}
		tentative := compose(append(append([]string(nil), current...), account))
		if len(tentative) <= maxLen {
			current = append(current, account)
			continue
		}
		batches = append(batches, Batch{Accounts: current, Query: compose(current)})
		current = []string{account}
	}
	if len(current) > 0 {
		batches = append(batches, Batch{Accounts: current, Query: compose(current)})
	}

	return batches, nil
}
