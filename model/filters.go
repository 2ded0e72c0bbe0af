package model

import (
	"context"
	"strings"
	"sync"

	"github.com/itchyny/gojq"
)

// CollectionFilter narrows a materialized collection. Filters are applied
// in declaration order and must not reorder the collection.
type CollectionFilter func(instances []*Instance) []*Instance

var jqFilterCodeCache sync.Map

// JQFilter builds a collection filter from a jq predicate expression. The
// expression is evaluated against each instance's property mapping; the
// instance survives when the first produced value is neither false nor
// null. Evaluation failures exclude the instance.
func JQFilter(expression string) (CollectionFilter, error) {
	trimmed := strings.TrimSpace(expression)
	if trimmed == "" {
		return nil, validationError("jq filter expression must not be empty", nil)
	}

	code, err := cachedJQFilterCode(trimmed)
	if err != nil {
		return nil, validationError("invalid jq filter expression", err)
	}

	return func(instances []*Instance) []*Instance {
		kept := make([]*Instance, 0, len(instances))
		for _, instance := range instances {
			if jqFilterMatches(code, instance) {
				kept = append(kept, instance)
			}
		}
		return kept
	}, nil
}

func jqFilterMatches(code *gojq.Code, instance *Instance) bool {
	iterator := code.RunWithContext(context.Background(), instance.Properties())
	value, ok := iterator.Next()
	if !ok {
		return false
	}
	if _, isErr := value.(error); isErr {
		return false
	}
	return value != nil && value != false
}

func cachedJQFilterCode(expression string) (*gojq.Code, error) {
	if cached, ok := jqFilterCodeCache.Load(expression); ok {
		if typed, ok := cached.(*gojq.Code); ok && typed != nil {
			return typed, nil
		}
	}

	query, err := gojq.Parse(expression)
	if err != nil {
		return nil, err
	}
	code, err := gojq.Compile(query)
	if err != nil {
		return nil, err
	}

	actual, _ := jqFilterCodeCache.LoadOrStore(expression, code)
	typed, _ := actual.(*gojq.Code)
	if typed == nil {
		return code, nil
	}
	return typed, nil
}
