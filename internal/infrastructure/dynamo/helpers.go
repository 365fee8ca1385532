package dynamo

import (
	"errors"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// strKey builds a DynamoDB primary key map with a single string attribute.
func strKey(name, value string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		name: &types.AttributeValueMemberS{Value: value},
	}
}

// buildUpdateExpr converts a map of field->value into a DynamoDB SET expression.
// Fields are emitted in sorted order so the expression is deterministic.
// A field name containing a dot addresses into a map attribute
// (e.g. "extra_fields.club" becomes "#f0.#f0k = :v0").
func buildUpdateExpr(updates map[string]interface{}) (expr string, names map[string]string, values map[string]types.AttributeValue, err error) {
	if len(updates) == 0 {
		return "", nil, nil, fmt.Errorf("no fields to update")
	}
	keys := make([]string, 0, len(updates))
	for k := range updates {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	names = make(map[string]string)
	values = make(map[string]types.AttributeValue)
	expr = "SET "
	for i, k := range keys {
		av, mErr := attributevalue.Marshal(updates[k])
		if mErr != nil {
			return "", nil, nil, fmt.Errorf("marshal field %s: %w", k, mErr)
		}
		valueKey := fmt.Sprintf(":v%d", i)
		values[valueKey] = av
		if i > 0 {
			expr += ", "
		}
		expr += fmt.Sprintf("%s = %s", exprName(k, i, names), valueKey)
	}
	return expr, names, values, nil
}

// buildRemoveExpr builds a REMOVE expression for the given attribute paths.
func buildRemoveExpr(paths []string) (expr string, names map[string]string) {
	names = make(map[string]string)
	expr = "REMOVE "
	for i, p := range paths {
		if i > 0 {
			expr += ", "
		}
		expr += exprName(p, i, names)
	}
	return expr, names
}

// exprName registers placeholder names for an attribute path and returns the
// placeholder expression. "a.b" yields "#f0.#f0k" with both segments aliased,
// which lets map keys contain characters DynamoDB would otherwise reject.
func exprName(path string, i int, names map[string]string) string {
	for j := 0; j < len(path); j++ {
		if path[j] == '.' {
			parent := fmt.Sprintf("#f%d", i)
			child := fmt.Sprintf("#f%dk", i)
			names[parent] = path[:j]
			names[child] = path[j+1:]
			return parent + "." + child
		}
	}
	nameKey := fmt.Sprintf("#f%d", i)
	names[nameKey] = path
	return nameKey
}

// isConditionalFailure reports whether err is a failed ConditionExpression,
// either on a single-item call or inside a transaction.
func isConditionalFailure(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return true
	}
	var tce *types.TransactionCanceledException
	if errors.As(err, &tce) {
		for _, reason := range tce.CancellationReasons {
			if reason.Code != nil && *reason.Code == "ConditionalCheckFailed" {
				return true
			}
		}
	}
	return false
}
