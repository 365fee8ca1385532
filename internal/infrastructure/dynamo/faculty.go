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

const facultyCollection = "faculty"

// FacultyRepo mirrors StudentRepo for the faculty table; the natural key is
// the email address.
type FacultyRepo struct {
	client    *dynamodb.Client
	tableName string
	keysTable string
}

func NewFacultyRepo(client *dynamodb.Client, tableName, keysTable string) *FacultyRepo {
	return &FacultyRepo{client: client, tableName: tableName, keysTable: keysTable}
}

func (r *FacultyRepo) Create(ctx context.Context, f *domain.Faculty) error {
	item, err := attributevalue.MarshalMap(f)
	if err != nil {
		return fmt.Errorf("marshal faculty: %w", err)
	}
	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: &types.Put{TableName: aws.String(r.tableName), Item: item}},
			nkPut(r.keysTable, facultyCollection, f.Email, f.FacultyID),
		},
	})
	if isConditionalFailure(err) {
		return fmt.Errorf("faculty email %s already exists: %w", f.Email, domain.ErrConflict)
	}
	return err
}

func (r *FacultyRepo) Get(ctx context.Context, facultyID string) (*domain.Faculty, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("faculty_id", facultyID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("faculty %s: %w", facultyID, domain.ErrNotFound)
	}
	var f domain.Faculty
	if err := attributevalue.UnmarshalMap(out.Item, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *FacultyRepo) GetByEmail(ctx context.Context, email string) (*domain.Faculty, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("email-index"),
		KeyConditionExpression: aws.String("email = :v"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":v": &types.AttributeValueMemberS{Value: email},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("faculty email %s: %w", email, domain.ErrNotFound)
	}
	var f domain.Faculty
	if err := attributevalue.UnmarshalMap(out.Items[0], &f); err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *FacultyRepo) Scan(ctx context.Context) ([]domain.Faculty, error) {
	var faculty []domain.Faculty
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(r.tableName),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, err
		}
		var page []domain.Faculty
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		faculty = append(faculty, page...)
		if out.LastEvaluatedKey == nil {
			return faculty, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

func (r *FacultyRepo) Count(ctx context.Context) (int, error) {
	out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
		TableName: aws.String(r.tableName),
		Select:    types.SelectCount,
	})
	if err != nil {
		return 0, err
	}
	return int(out.Count), nil
}

func (r *FacultyRepo) UpdateFields(ctx context.Context, facultyID string, updates map[string]interface{}) error {
	expr, names, values, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("faculty_id", facultyID),
		UpdateExpression:          aws.String(expr),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		ConditionExpression:       aws.String("attribute_exists(faculty_id)"),
	})
	if isConditionalFailure(err) {
		return fmt.Errorf("faculty %s: %w", facultyID, domain.ErrNotFound)
	}
	return err
}

// Rekey moves the natural-key guard and rewrites the record in one
// transaction when the email changes, so no failure can leave the old email
// unguarded while a record still carries it.
func (r *FacultyRepo) Rekey(ctx context.Context, facultyID, oldEmail, newEmail string, updates map[string]interface{}) error {
	expr, names, values, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			nkDelete(r.keysTable, facultyCollection, oldEmail),
			nkPut(r.keysTable, facultyCollection, newEmail, facultyID),
			{Update: &types.Update{
				TableName:                 aws.String(r.tableName),
				Key:                       strKey("faculty_id", facultyID),
				UpdateExpression:          aws.String(expr),
				ExpressionAttributeNames:  names,
				ExpressionAttributeValues: values,
				ConditionExpression:       aws.String("attribute_exists(faculty_id)"),
			}},
		},
	})
	if isConditionalFailure(err) {
		return fmt.Errorf("faculty email %s already exists: %w", newEmail, domain.ErrConflict)
	}
	return err
}

func (r *FacultyRepo) Delete(ctx context.Context, facultyID, email string) error {
	_, err := r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Delete: &types.Delete{
				TableName:           aws.String(r.tableName),
				Key:                 strKey("faculty_id", facultyID),
				ConditionExpression: aws.String("attribute_exists(faculty_id)"),
			}},
			nkDelete(r.keysTable, facultyCollection, email),
		},
	})
	if isConditionalFailure(err) {
		return fmt.Errorf("faculty %s: %w", facultyID, domain.ErrNotFound)
	}
	return err
}

func (r *FacultyRepo) ClearColumn(ctx context.Context, attr string) (int, error) {
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
			Key:                       strKey("faculty_id", id),
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

func (r *FacultyRepo) RemoveExtraColumn(ctx context.Context, column string) (int, error) {
	ids, err := r.scanIDs(ctx, column)
	if err != nil {
		return 0, err
	}
	expr, names := buildRemoveExpr([]string{fieldExtraFields + "." + column})
	modified := 0
	for _, id := range ids {
		_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
			TableName:                aws.String(r.tableName),
			Key:                      strKey("faculty_id", id),
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

func (r *FacultyRepo) scanIDs(ctx context.Context, extraColumn string) ([]string, error) {
	input := &dynamodb.ScanInput{
		TableName:            aws.String(r.tableName),
		ProjectionExpression: aws.String("faculty_id"),
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
			if v, ok := item["faculty_id"].(*types.AttributeValueMemberS); ok {
				ids = append(ids, v.Value)
			}
		}
		if out.LastEvaluatedKey == nil {
			return ids, nil
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
}
