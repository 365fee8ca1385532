package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/deptboard-api/internal/domain"
)

const subjectsCollection = "subjects"

// SubjectRepo provides typed DynamoDB operations for the subjects table.
// Subject codes are unique via the shared natural_keys table.
type SubjectRepo struct {
	client    *dynamodb.Client
	tableName string
	keysTable string
}

func NewSubjectRepo(client *dynamodb.Client, tableName, keysTable string) *SubjectRepo {
	return &SubjectRepo{client: client, tableName: tableName, keysTable: keysTable}
}

func (r *SubjectRepo) Create(ctx context.Context, s *domain.Subject) error {
	item, err := attributevalue.MarshalMap(s)
	if err != nil {
		return fmt.Errorf("marshal subject: %w", err)
	}
	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: &types.Put{TableName: aws.String(r.tableName), Item: item}},
			nkPut(r.keysTable, subjectsCollection, s.SubjectCode, s.SubjectID),
		},
	})
	if isConditionalFailure(err) {
		return fmt.Errorf("subject code %s already exists: %w", s.SubjectCode, domain.ErrConflict)
	}
	return err
}

func (r *SubjectRepo) Get(ctx context.Context, subjectID string) (*domain.Subject, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("subject_id", subjectID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("subject %s: %w", subjectID, domain.ErrNotFound)
	}
	var s domain.Subject
	if err := attributevalue.UnmarshalMap(out.Item, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// subjectScanInput builds the listing scan. An empty year means the whole
// catalogue: no filter at all, since every stored subject has a non-empty
// year and a "#y = :year" match against "" would return nothing.
func subjectScanInput(tableName, year string) *dynamodb.ScanInput {
	input := &dynamodb.ScanInput{
		TableName: aws.String(tableName),
	}
	if year != "" {
		input.FilterExpression = aws.String("#y = :year")
		input.ExpressionAttributeNames = map[string]string{
			"#y": "year",
		}
		input.ExpressionAttributeValues = map[string]types.AttributeValue{
			":year": &types.AttributeValueMemberS{Value: year},
		}
	}
	return input
}

// ListByYear scans for subjects of one year, or all subjects when year is
// empty. The subject catalogue is small, so a filtered scan is fine here.
func (r *SubjectRepo) ListByYear(ctx context.Context, year string) ([]domain.Subject, error) {
	var subjects []domain.Subject
	input := subjectScanInput(r.tableName, year)
	for {
		out, err := r.client.Scan(ctx, input)
		if err != nil {
			return nil, err
		}
		var page []domain.Subject
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		subjects = append(subjects, page...)
		if out.LastEvaluatedKey == nil {
			return subjects, nil
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
}

func (r *SubjectRepo) SetMaterialLink(ctx context.Context, subjectID, link string) error {
	expr, names, values, err := buildUpdateExpr(map[string]interface{}{
		fieldMaterialLink: link,
		fieldUpdatedAt:    time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("subject_id", subjectID),
		UpdateExpression:          aws.String(expr),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		ConditionExpression:       aws.String("attribute_exists(subject_id)"),
	})
	if isConditionalFailure(err) {
		return fmt.Errorf("subject %s: %w", subjectID, domain.ErrNotFound)
	}
	return err
}

func (r *SubjectRepo) Delete(ctx context.Context, subjectID, subjectCode string) error {
	_, err := r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Delete: &types.Delete{
				TableName:           aws.String(r.tableName),
				Key:                 strKey("subject_id", subjectID),
				ConditionExpression: aws.String("attribute_exists(subject_id)"),
			}},
			nkDelete(r.keysTable, subjectsCollection, subjectCode),
		},
	})
	if isConditionalFailure(err) {
		return fmt.Errorf("subject %s: %w", subjectID, domain.ErrNotFound)
	}
	return err
}
