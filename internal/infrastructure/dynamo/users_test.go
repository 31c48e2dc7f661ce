package dynamo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/notes-api-nosql/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newTestUserRepo(api *mockAPI) *UserRepo {
	r := NewUserRepo(api, "users")
	r.now = func() time.Time { return fixedNow }
	return r
}

func userItem(t *testing.T, u domain.User) map[string]types.AttributeValue {
	t.Helper()
	item, err := attributevalue.MarshalMap(u)
	require.NoError(t, err)
	return item
}

func TestUserRepo_GetByEmail_NotFound(t *testing.T) {
	api := &mockAPI{}
	api.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{}, nil)

	_, err := newTestUserRepo(api).GetByEmail(context.Background(), "a@x.com")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestUserRepo_GetByEmail_ConsistentReadByEmailKey(t *testing.T) {
	api := &mockAPI{}
	api.On("GetItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.GetItemInput) bool {
		k, ok := in.Key["email"].(*types.AttributeValueMemberS)
		return ok && k.Value == "a@x.com" && aws.ToBool(in.ConsistentRead)
	})).Return(&dynamodb.GetItemOutput{Item: userItem(t, domain.User{UserID: "u1", Email: "a@x.com", Verified: true})}, nil)

	u, err := newTestUserRepo(api).GetByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.UserID)
	assert.True(t, u.Verified)
	api.AssertExpectations(t)
}

func TestUserRepo_GetByGoogleID_QueriesIndex(t *testing.T) {
	api := &mockAPI{}
	api.On("Query", mock.Anything, mock.MatchedBy(func(in *dynamodb.QueryInput) bool {
		return aws.ToString(in.IndexName) == "google_id-index" && in.ExpressionAttributeNames["#a"] == "google_id"
	})).Return(&dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{
		userItem(t, domain.User{UserID: "u1", Email: "a@x.com", GoogleID: "g1"}),
	}}, nil)

	u, err := newTestUserRepo(api).GetByGoogleID(context.Background(), "g1")
	require.NoError(t, err)
	assert.Equal(t, "g1", u.GoogleID)
}

func TestUserRepo_Get_NotFound(t *testing.T) {
	api := &mockAPI{}
	api.On("Query", mock.Anything, mock.Anything).Return(&dynamodb.QueryOutput{}, nil)

	_, err := newTestUserRepo(api).Get(context.Background(), "missing")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestUserRepo_Create_Conflict(t *testing.T) {
	api := &mockAPI{}
	api.On("PutItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.PutItemInput) bool {
		_, hasGoogle := in.Item["google_id"]
		return aws.ToString(in.ConditionExpression) == "attribute_not_exists(#e)" && !hasGoogle
	})).Return(&types.ConditionalCheckFailedException{})

	err := newTestUserRepo(api).Create(context.Background(), &domain.User{UserID: "u1", Email: "a@x.com"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestUserRepo_UpsertChallenge_SingleAtomicUpdate(t *testing.T) {
	api := &mockAPI{}
	exp := fixedNow.Add(10 * time.Minute)
	var got *dynamodb.UpdateItemInput
	api.On("UpdateItem", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		got = args.Get(1).(*dynamodb.UpdateItemInput)
	}).Return(&dynamodb.UpdateItemOutput{Attributes: userItem(t, domain.User{
		UserID: "new-id", Email: "a@x.com", OTPCodeHash: "hash", OTPExpiresAt: &exp,
	})}, nil)

	u, err := newTestUserRepo(api).UpsertChallenge(context.Background(), "a@x.com", "new-id",
		domain.OTPChallenge{CodeHash: "hash", ExpiresAt: exp})
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t,
		"SET #f0 = :v0, #f1 = :v1, #f2 = if_not_exists(#f2, :v2), #f3 = if_not_exists(#f3, :v3), #f4 = if_not_exists(#f4, :v4), #f5 = :v5",
		aws.ToString(got.UpdateExpression))
	assert.Equal(t, "user_id", got.ExpressionAttributeNames["#f2"])
	assert.Equal(t, "verified", got.ExpressionAttributeNames["#f3"])
	assert.Nil(t, got.ConditionExpression)
	assert.Equal(t, types.ReturnValueAllNew, got.ReturnValues)

	c, ok := u.Challenge()
	require.True(t, ok)
	assert.True(t, exp.Equal(c.ExpiresAt))
}

func TestUserRepo_ConsumeChallenge_ConditionOnHash(t *testing.T) {
	api := &mockAPI{}
	api.On("UpdateItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.UpdateItemInput) bool {
		h, _ := in.ExpressionAttributeValues[":v2"].(*types.AttributeValueMemberS)
		return aws.ToString(in.UpdateExpression) == "SET #f0 = :v0, #f1 = :v1 REMOVE #f2, #f3" &&
			aws.ToString(in.ConditionExpression) == "#f2 = :v2" &&
			in.ExpressionAttributeNames["#f2"] == "otp_code_hash" &&
			h != nil && h.Value == "hash"
	})).Return(&dynamodb.UpdateItemOutput{Attributes: userItem(t, domain.User{UserID: "u1", Email: "a@x.com", Verified: true})}, nil)

	u, err := newTestUserRepo(api).ConsumeChallenge(context.Background(), "a@x.com", "hash")
	require.NoError(t, err)
	assert.True(t, u.Verified)
	_, live := u.Challenge()
	assert.False(t, live)
	api.AssertExpectations(t)
}

func TestUserRepo_ConsumeChallenge_LostRace(t *testing.T) {
	api := &mockAPI{}
	api.On("UpdateItem", mock.Anything, mock.Anything).Return(nil, &types.ConditionalCheckFailedException{})

	_, err := newTestUserRepo(api).ConsumeChallenge(context.Background(), "a@x.com", "hash")
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestUserRepo_LinkGoogle_Condition(t *testing.T) {
	api := &mockAPI{}
	api.On("UpdateItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.UpdateItemInput) bool {
		return aws.ToString(in.ConditionExpression) == "attribute_exists(#f4) AND (attribute_not_exists(#f0) OR #f0 = :v4)" &&
			in.ExpressionAttributeNames["#f0"] == "google_id" &&
			in.ExpressionAttributeNames["#f4"] == "email"
	})).Return(&dynamodb.UpdateItemOutput{Attributes: userItem(t, domain.User{
		UserID: "u1", Email: "a@x.com", GoogleID: "g1", DisplayName: "Ann", Verified: true,
	})}, nil)

	u, err := newTestUserRepo(api).LinkGoogle(context.Background(), "a@x.com",
		domain.GoogleIdentity{Subject: "g1", Email: "a@x.com", Name: "Ann"})
	require.NoError(t, err)
	assert.Equal(t, "g1", u.GoogleID)
	assert.Equal(t, "Ann", u.DisplayName)
	api.AssertExpectations(t)
}

func TestUserRepo_UpdateError_Propagates(t *testing.T) {
	api := &mockAPI{}
	boom := errors.New("throttled")
	api.On("UpdateItem", mock.Anything, mock.Anything).Return(nil, boom)

	_, err := newTestUserRepo(api).LinkGoogle(context.Background(), "a@x.com", domain.GoogleIdentity{Subject: "g1"})
	assert.ErrorIs(t, err, boom)
	assert.False(t, errors.Is(err, domain.ErrConflict))
}
