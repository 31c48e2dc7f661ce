package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/notes-api-nosql/internal/domain"
)

// UserRepo provides typed DynamoDB operations for the users table.
// PK: email. GSIs: user_id-index, google_id-index.
//
// Every mutation is a single PutItem or UpdateItem on one item, so callers get
// atomic read-modify-write per user without holding locks.
type UserRepo struct {
	client    API
	tableName string
	now       func() time.Time
}

func NewUserRepo(client API, tableName string) *UserRepo {
	return &UserRepo{client: client, tableName: tableName, now: time.Now}
}

// Create inserts a new user. It fails with domain.ErrConflict when a record
// for the email already exists.
func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	item, err := attributevalue.MarshalMap(u)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(r.tableName),
		Item:                     item,
		ConditionExpression:      aws.String("attribute_not_exists(#e)"),
		ExpressionAttributeNames: map[string]string{"#e": fieldEmail},
	})
	if isConditionFailed(err) {
		return fmt.Errorf("user %s already exists: %w", u.Email, domain.ErrConflict)
	}
	return err
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            strKey(fieldEmail, email),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	return unmarshalUser(out.Item)
}

// Get looks a user up by the id embedded in session tokens. It completes the
// store contract (find by id, email or Google id); the login flows key on email.
func (r *UserRepo) Get(ctx context.Context, userID string) (*domain.User, error) {
	return r.queryGSI(ctx, indexUserID, fieldUserID, userID)
}

func (r *UserRepo) GetByGoogleID(ctx context.Context, googleID string) (*domain.User, error) {
	return r.queryGSI(ctx, indexGoogleID, fieldGoogleID, googleID)
}

// UpsertChallenge stores c as the user's only challenge. When no record
// exists for email one is created with newUserID and verified=false; an
// existing record keeps its identity and verification state. Concurrent calls
// are last-write-wins.
func (r *UserRepo) UpsertChallenge(ctx context.Context, email, newUserID string, c domain.OTPChallenge) (*domain.User, error) {
	now := r.now().UTC()
	b := newExprBuilder()
	b.set(fieldOTPCodeHash, c.CodeHash)
	b.set(fieldOTPExpiresAt, c.ExpiresAt.UTC())
	b.setIfNotExists(fieldUserID, newUserID)
	b.setIfNotExists(fieldVerified, false)
	b.setIfNotExists(fieldCreatedAt, now)
	b.set(fieldUpdatedAt, now)
	return r.update(ctx, email, b, "")
}

// ConsumeChallenge marks the user verified and removes the challenge, but only
// if the stored code hash is still codeHash. A replaced or already consumed
// challenge yields domain.ErrConflict.
func (r *UserRepo) ConsumeChallenge(ctx context.Context, email, codeHash string) (*domain.User, error) {
	b := newExprBuilder()
	b.set(fieldVerified, true)
	b.set(fieldUpdatedAt, r.now().UTC())
	b.remove(fieldOTPCodeHash)
	b.remove(fieldOTPExpiresAt)
	cond := fmt.Sprintf("%s = %s", b.name(fieldOTPCodeHash), b.value(codeHash))
	return r.update(ctx, email, b, cond)
}

// LinkGoogle attaches a Google subject to the existing record for email,
// overwrites the display name and marks the user verified. A record already
// linked to a different subject yields domain.ErrConflict.
func (r *UserRepo) LinkGoogle(ctx context.Context, email string, id domain.GoogleIdentity) (*domain.User, error) {
	b := newExprBuilder()
	b.set(fieldGoogleID, id.Subject)
	b.set(fieldDisplayName, id.Name)
	b.set(fieldVerified, true)
	b.set(fieldUpdatedAt, r.now().UTC())
	gid := b.name(fieldGoogleID)
	cond := fmt.Sprintf("attribute_exists(%s) AND (attribute_not_exists(%s) OR %s = %s)",
		b.name(fieldEmail), gid, gid, b.value(id.Subject))
	return r.update(ctx, email, b, cond)
}

func (r *UserRepo) update(ctx context.Context, email string, b *exprBuilder, cond string) (*domain.User, error) {
	expr, err := b.update()
	if err != nil {
		return nil, err
	}
	in := &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey(fieldEmail, email),
		UpdateExpression:          aws.String(expr),
		ExpressionAttributeNames:  b.names,
		ExpressionAttributeValues: b.attrValues(),
		ReturnValues:              types.ReturnValueAllNew,
	}
	if cond != "" {
		in.ConditionExpression = aws.String(cond)
	}
	out, err := r.client.UpdateItem(ctx, in)
	if isConditionFailed(err) {
		return nil, fmt.Errorf("update user %s: %w", email, domain.ErrConflict)
	}
	if err != nil {
		return nil, err
	}
	return unmarshalUser(out.Attributes)
}

func (r *UserRepo) queryGSI(ctx context.Context, index, attr, value string) (*domain.User, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(index),
		KeyConditionExpression:    aws.String("#a = :v"),
		ExpressionAttributeNames:  map[string]string{"#a": attr},
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: value}},
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	return unmarshalUser(out.Items[0])
}

func unmarshalUser(item map[string]types.AttributeValue) (*domain.User, error) {
	var u domain.User
	if err := attributevalue.UnmarshalMap(item, &u); err != nil {
		return nil, fmt.Errorf("unmarshal user: %w", err)
	}
	return &u, nil
}
