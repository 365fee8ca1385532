package dynamo

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// The natural_keys table enforces natural-key uniqueness atomically.
// Each roster record owns one guard item keyed "collection#value"
// (e.g. "students#42" or "faculty#a@b.edu"); guard puts carry an
// attribute_not_exists condition, so a race between two creates with the
// same key can commit at most one of them.
//
// PK: nk (string). Attribute record_id points back at the owning record.

const nkAttr = "nk"

func nkValue(collection, key string) string {
	return collection + "#" + key
}

// nkPut returns a transaction item that claims a natural key.
func nkPut(table, collection, key, recordID string) types.TransactWriteItem {
	return types.TransactWriteItem{
		Put: &types.Put{
			TableName: aws.String(table),
			Item: map[string]types.AttributeValue{
				nkAttr:      &types.AttributeValueMemberS{Value: nkValue(collection, key)},
				"record_id": &types.AttributeValueMemberS{Value: recordID},
			},
			ConditionExpression: aws.String("attribute_not_exists(" + nkAttr + ")"),
		},
	}
}

// nkDelete returns a transaction item that releases a natural key.
func nkDelete(table, collection, key string) types.TransactWriteItem {
	return types.TransactWriteItem{
		Delete: &types.Delete{
			TableName: aws.String(table),
			Key:       strKey(nkAttr, nkValue(collection, key)),
		},
	}
}
