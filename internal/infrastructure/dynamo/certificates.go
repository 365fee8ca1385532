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

// CertificateRepo provides typed DynamoDB operations for the certificates table.
type CertificateRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewCertificateRepo(client *dynamodb.Client, tableName string) *CertificateRepo {
	return &CertificateRepo{client: client, tableName: tableName}
}

func (r *CertificateRepo) Put(ctx context.Context, c *domain.Certificate) error {
	item, err := attributevalue.MarshalMap(c)
	if err != nil {
		return fmt.Errorf("marshal certificate: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *CertificateRepo) Get(ctx context.Context, certificateID string) (*domain.Certificate, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("certificate_id", certificateID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("certificate %s: %w", certificateID, domain.ErrNotFound)
	}
	var c domain.Certificate
	if err := attributevalue.UnmarshalMap(out.Item, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// ListByOwner returns every certificate of one student, newest first. The
// query follows LastEvaluatedKey so a listing past the 1MB page limit is not
// silently truncated.
func (r *CertificateRepo) ListByOwner(ctx context.Context, studentID string) ([]domain.Certificate, error) {
	var certs []domain.Certificate
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("student_id-uploaded_at-index"),
		KeyConditionExpression: aws.String("student_id = :sid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":sid": &types.AttributeValueMemberS{Value: studentID},
		},
		ScanIndexForward: aws.Bool(false),
	}
	for {
		out, err := r.client.Query(ctx, input)
		if err != nil {
			return nil, err
		}
		var page []domain.Certificate
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		certs = append(certs, page...)
		if out.LastEvaluatedKey == nil {
			return certs, nil
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
}

// ListNotRejected returns the reviewer queue: everything except rejected
// certificates.
func (r *CertificateRepo) ListNotRejected(ctx context.Context) ([]domain.Certificate, error) {
	var certs []domain.Certificate
	input := &dynamodb.ScanInput{
		TableName:        aws.String(r.tableName),
		FilterExpression: aws.String("#s <> :rejected"),
		ExpressionAttributeNames: map[string]string{
			"#s": fieldStatus,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":rejected": &types.AttributeValueMemberS{Value: domain.CertStatusRejected},
		},
	}
	for {
		out, err := r.client.Scan(ctx, input)
		if err != nil {
			return nil, err
		}
		var page []domain.Certificate
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		certs = append(certs, page...)
		if out.LastEvaluatedKey == nil {
			return certs, nil
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
}

func (r *CertificateRepo) Count(ctx context.Context) (int, error) {
	out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
		TableName: aws.String(r.tableName),
		Select:    types.SelectCount,
	})
	if err != nil {
		return 0, err
	}
	return int(out.Count), nil
}

func (r *CertificateRepo) SetStatus(ctx context.Context, certificateID, status string) error {
	expr, names, values, err := buildUpdateExpr(map[string]interface{}{
		fieldStatus: status,
	})
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("certificate_id", certificateID),
		UpdateExpression:          aws.String(expr),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		ConditionExpression:       aws.String("attribute_exists(certificate_id)"),
	})
	if isConditionalFailure(err) {
		return fmt.Errorf("certificate %s: %w", certificateID, domain.ErrNotFound)
	}
	return err
}

func (r *CertificateRepo) Delete(ctx context.Context, certificateID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 strKey("certificate_id", certificateID),
		ConditionExpression: aws.String("attribute_exists(certificate_id)"),
	})
	if isConditionalFailure(err) {
		return fmt.Errorf("certificate %s: %w", certificateID, domain.ErrNotFound)
	}
	return err
}
