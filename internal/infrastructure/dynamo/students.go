package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/deptboard-api/internal/domain"
)

const studentsCollection = "students"

// StudentRepo provides typed DynamoDB operations for the students table.
// Roll-number uniqueness is enforced through guard items in the shared
// natural_keys table; every create/delete/rekey runs as a transaction
// touching both tables.
type StudentRepo struct {
	client    *dynamodb.Client
	tableName string
	keysTable string
}

func NewStudentRepo(client *dynamodb.Client, tableName, keysTable string) *StudentRepo {
	return &StudentRepo{client: client, tableName: tableName, keysTable: keysTable}
}

// Create writes the record and claims its roll number in one transaction.
// Returns domain.ErrConflict when the roll number is already taken.
func (r *StudentRepo) Create(ctx context.Context, s *domain.Student) error {
	item, err := attributevalue.MarshalMap(s)
	if err != nil {
		return fmt.Errorf("marshal student: %w", err)
	}
	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: &types.Put{TableName: aws.String(r.tableName), Item: item}},
			nkPut(r.keysTable, studentsCollection, s.RollNo, s.StudentID),
		},
	})
	if isConditionalFailure(err) {
		return fmt.Errorf("roll number %s already exists: %w", s.RollNo, domain.ErrConflict)
	}
	return err
}

func (r *StudentRepo) Get(ctx context.Context, studentID string) (*domain.Student, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("student_id", studentID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("student %s: %w", studentID, domain.ErrNotFound)
	}
	var s domain.Student
	if err := attributevalue.UnmarshalMap(out.Item, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *StudentRepo) GetByRollNo(ctx context.Context, rollNo string) (*domain.Student, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("roll_no-index"),
		KeyConditionExpression: aws.String("roll_no = :v"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":v": &types.AttributeValueMemberS{Value: rollNo},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("roll number %s: %w", rollNo, domain.ErrNotFound)
	}
	var s domain.Student
	if err := attributevalue.UnmarshalMap(out.Items[0], &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Scan returns the full collection, unordered. Callers sort; the collection
// is a single department roster, small by construction.
func (r *StudentRepo) Scan(ctx context.Context) ([]domain.Student, error) {
	var students []domain.Student
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(r.tableName),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, err
		}
		var page []domain.Student
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		students = append(students, page...)
		if out.LastEvaluatedKey == nil {
			return students, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

func (r *StudentRepo) Count(ctx context.Context) (int, error) {
	out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
		TableName: aws.String(r.tableName),
		Select:    types.SelectCount,
	})
	if err != nil {
		return 0, err
	}
	return int(out.Count), nil
}

// UpdateFields applies a partial update: updates keys are DynamoDB attribute
// paths ("name", "extra_fields.club", ...). Fails with domain.ErrNotFound if
// the record does not exist, so an update can never resurrect a deleted id.
func (r *StudentRepo) UpdateFields(ctx context.Context, studentID string, updates map[string]interface{}) error {
	expr, names, values, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("student_id", studentID),
		UpdateExpression:          aws.String(expr),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		ConditionExpression:       aws.String("attribute_exists(student_id)"),
	})
	if isConditionalFailure(err) {
		return fmt.Errorf("student %s: %w", studentID, domain.ErrNotFound)
	}
	return err
}

// Rekey moves the natural-key guard and rewrites the record in a single
// transaction when a roll number changes. Releasing the old guard, claiming
// the new one and the record update commit together, so no failure can leave
// the old roll number unguarded while a record still carries it.
// Returns domain.ErrConflict when the new roll number is already claimed.
func (r *StudentRepo) Rekey(ctx context.Context, studentID, oldRollNo, newRollNo string, updates map[string]interface{}) error {
	expr, names, values, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			nkDelete(r.keysTable, studentsCollection, oldRollNo),
			nkPut(r.keysTable, studentsCollection, newRollNo, studentID),
			{Update: &types.Update{
				TableName:                 aws.String(r.tableName),
				Key:                       strKey("student_id", studentID),
				UpdateExpression:          aws.String(expr),
				ExpressionAttributeNames:  names,
				ExpressionAttributeValues: values,
				ConditionExpression:       aws.String("attribute_exists(student_id)"),
			}},
		},
	})
	if isConditionalFailure(err) {
		return fmt.Errorf("roll number %s already exists: %w", newRollNo, domain.ErrConflict)
	}
	return err
}

// Delete removes the record and releases its roll number. A second delete of
// the same id fails with domain.ErrNotFound.
func (r *StudentRepo) Delete(ctx context.Context, studentID, rollNo string) error {
	_, err := r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Delete: &types.Delete{
				TableName:           aws.String(r.tableName),
				Key:                 strKey("student_id", studentID),
				ConditionExpression: aws.String("attribute_exists(student_id)"),
			}},
			nkDelete(r.keysTable, studentsCollection, rollNo),
		},
	})
	if isConditionalFailure(err) {
		return fmt.Errorf("student %s: %w", studentID, domain.ErrNotFound)
	}
	return err
}

// ClearColumn blanks one core column on every record and returns the number
// of records touched. Not transactional: a failure mid-way leaves earlier
// records cleared, and the count reports how far it got.
func (r *StudentRepo) ClearColumn(ctx context.Context, attr string) (int, error) {
	ids, err := r.scanIDs(ctx, "")
	if err != nil {
		return 0, err
	}
	expr, names, values, err := buildUpdateExpr(map[string]interface{}{attr: ""})
	if err != nil {
		return 0, err
	}
	modified := 0
	for _, id := range ids {
		_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
			TableName:                 aws.String(r.tableName),
			Key:                       strKey("student_id", id),
			UpdateExpression:          aws.String(expr),
			ExpressionAttributeNames:  names,
			ExpressionAttributeValues: values,
		})
		if err != nil {
			return modified, err
		}
		modified++
	}
	return modified, nil
}

// RemoveExtraColumn drops one dynamic column from every record that has it
// and returns the number of records modified.
func (r *StudentRepo) RemoveExtraColumn(ctx context.Context, column string) (int, error) {
	ids, err := r.scanIDs(ctx, column)
	if err != nil {
		return 0, err
	}
	expr, names := buildRemoveExpr([]string{fieldExtraFields + "." + column})
	modified := 0
	for _, id := range ids {
		_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
			TableName:                aws.String(r.tableName),
			Key:                      strKey("student_id", id),
			UpdateExpression:         aws.String(expr),
			ExpressionAttributeNames: names,
		})
		if err != nil {
			return modified, err
		}
		modified++
	}
	return modified, nil
}

// scanIDs collects record ids, optionally only those that carry the given
// extra-fields column.
func (r *StudentRepo) scanIDs(ctx context.Context, extraColumn string) ([]string, error) {
	input := &dynamodb.ScanInput{
		TableName:            aws.String(r.tableName),
		ProjectionExpression: aws.String("student_id"),
	}
	if extraColumn != "" {
		input.FilterExpression = aws.String("attribute_exists(#ef.#k)")
		input.ExpressionAttributeNames = map[string]string{
			"#ef": fieldExtraFields,
			"#k":  extraColumn,
		}
	}
	var ids []string
	for {
		out, err := r.client.Scan(ctx, input)
		if err != nil {
			return nil, err
		}
		for _, item := range out.Items {
			if v, ok := item["student_id"].(*types.AttributeValueMemberS); ok {
				ids = append(ids, v.Value)
			}
		}
		if out.LastEvaluatedKey == nil {
			return ids, nil
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
}
