package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/deptboard-api/internal/domain"
)

// PasswordResetRepo stores one-shot reset tokens. Expired rows disappear via
// the table's TTL on expires_at; Get still checks expiry because TTL deletion
// is lazy.
type PasswordResetRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewPasswordResetRepo(client *dynamodb.Client, tableName string) *PasswordResetRepo {
	return &PasswordResetRepo{client: client, tableName: tableName}
}

func (r *PasswordResetRepo) Put(ctx context.Context, pr *domain.PasswordReset) error {
	item, err := attributevalue.MarshalMap(pr)
	if err != nil {
		return fmt.Errorf("marshal password reset: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *PasswordResetRepo) Get(ctx context.Context, token string) (*domain.PasswordReset, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("token", token),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("reset token: %w", domain.ErrNotFound)
	}
	var pr domain.PasswordReset
	if err := attributevalue.UnmarshalMap(out.Item, &pr); err != nil {
		return nil, err
	}
	return &pr, nil
}

func (r *PasswordResetRepo) Delete(ctx context.Context, token string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("token", token),
	})
	return err
}
