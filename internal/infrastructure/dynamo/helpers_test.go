package dynamo

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildUpdateExpr_SingleField(t *testing.T) {
	expr, names, values, err := buildUpdateExpr(map[string]interface{}{"name": "Asha"})
	require.NoError(t, err)
	assert.Equal(t, "SET #f0 = :v0", expr)
	assert.Equal(t, map[string]string{"#f0": "name"}, names)
	_, ok := values[":v0"]
	assert.True(t, ok)
}

func TestBuildUpdateExpr_MultipleFields_Deterministic(t *testing.T) {
	updates := map[string]interface{}{
		"email":      "a@b.edu",
		"department": "CSE",
		"roll_no":    "42",
	}
	// Call twice to verify determinism.
	expr1, names1, _, err := buildUpdateExpr(updates)
	require.NoError(t, err)
	expr2, _, _, err := buildUpdateExpr(updates)
	require.NoError(t, err)

	assert.Equal(t, expr1, expr2)

	// Keys must be sorted: department < email < roll_no
	assert.Equal(t, "department", names1["#f0"])
	assert.Equal(t, "email", names1["#f1"])
	assert.Equal(t, "roll_no", names1["#f2"])
	assert.Equal(t, "SET #f0 = :v0, #f1 = :v1, #f2 = :v2", expr1)
}

func TestBuildUpdateExpr_MapPath(t *testing.T) {
	expr, names, _, err := buildUpdateExpr(map[string]interface{}{"extra_fields.club": "chess"})
	require.NoError(t, err)
	assert.Equal(t, "SET #f0.#f0k = :v0", expr)
	assert.Equal(t, "extra_fields", names["#f0"])
	assert.Equal(t, "club", names["#f0k"])
}

func TestBuildUpdateExpr_ValuesMarshalledCorrectly(t *testing.T) {
	_, _, values, err := buildUpdateExpr(map[string]interface{}{"is_read": true})
	require.NoError(t, err)
	av, ok := values[":v0"]
	require.True(t, ok)
	boolVal, isBool := av.(*types.AttributeValueMemberBOOL)
	require.True(t, isBool)
	assert.True(t, boolVal.Value)
}

func TestBuildUpdateExpr_EmptyMap_ReturnsError(t *testing.T) {
	_, _, _, err := buildUpdateExpr(map[string]interface{}{})
	assert.ErrorContains(t, err, "no fields to update")
}

func TestBuildRemoveExpr(t *testing.T) {
	expr, names := buildRemoveExpr([]string{"extra_fields.Section"})
	assert.Equal(t, "REMOVE #f0.#f0k", expr)
	assert.Equal(t, "extra_fields", names["#f0"])
	assert.Equal(t, "Section", names["#f0k"])
}

func TestIsConditionalFailure(t *testing.T) {
	assert.True(t, isConditionalFailure(&types.ConditionalCheckFailedException{}))

	code := "ConditionalCheckFailed"
	assert.True(t, isConditionalFailure(&types.TransactionCanceledException{
		CancellationReasons: []types.CancellationReason{{Code: &code}},
	}))

	other := "TransactionConflict"
	assert.False(t, isConditionalFailure(&types.TransactionCanceledException{
		CancellationReasons: []types.CancellationReason{{Code: &other}},
	}))
	assert.False(t, isConditionalFailure(nil))
	assert.False(t, isConditionalFailure(assert.AnError))
}
