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

// NoteRepo stores notes. PK: user_id, SK: note_id (ULID, so sort order is
// creation order).
type NoteRepo struct {
	client    API
	tableName string
}

func NewNoteRepo(client API, tableName string) *NoteRepo {
	return &NoteRepo{client: client, tableName: tableName}
}

func (r *NoteRepo) Put(ctx context.Context, n *domain.Note) error {
	item, err := attributevalue.MarshalMap(n)
	if err != nil {
		return fmt.Errorf("marshal note: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// ListByUser returns the user's notes, newest first.
func (r *NoteRepo) ListByUser(ctx context.Context, userID string) ([]domain.Note, error) {
	notes := []domain.Note{}
	var start map[string]types.AttributeValue
	for {
		out, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(r.tableName),
			KeyConditionExpression:    aws.String("#u = :u"),
			ExpressionAttributeNames:  map[string]string{"#u": fieldUserID},
			ExpressionAttributeValues: map[string]types.AttributeValue{":u": &types.AttributeValueMemberS{Value: userID}},
			ScanIndexForward:          aws.Bool(false),
			ExclusiveStartKey:         start,
		})
		if err != nil {
			return nil, err
		}
		var page []domain.Note
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, fmt.Errorf("unmarshal notes: %w", err)
		}
		notes = append(notes, page...)
		if len(out.LastEvaluatedKey) == 0 {
			return notes, nil
		}
		start = out.LastEvaluatedKey
	}
}

// UpdateContent replaces the content of an existing note owned by userID.
func (r *NoteRepo) UpdateContent(ctx context.Context, userID, noteID, content string, at time.Time) (*domain.Note, error) {
	b := newExprBuilder()
	b.set(fieldContent, content)
	b.set(fieldUpdatedAt, at.UTC())
	expr, err := b.update()
	if err != nil {
		return nil, err
	}
	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       compositeKey(fieldUserID, userID, fieldNoteID, noteID),
		UpdateExpression:          aws.String(expr),
		ConditionExpression:       aws.String(fmt.Sprintf("attribute_exists(%s)", b.name(fieldNoteID))),
		ExpressionAttributeNames:  b.names,
		ExpressionAttributeValues: b.attrValues(),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if isConditionFailed(err) {
		return nil, fmt.Errorf("note not found: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	var n domain.Note
	if err := attributevalue.UnmarshalMap(out.Attributes, &n); err != nil {
		return nil, fmt.Errorf("unmarshal note: %w", err)
	}
	return &n, nil
}

// Delete hard-deletes a note owned by userID.
func (r *NoteRepo) Delete(ctx context.Context, userID, noteID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                aws.String(r.tableName),
		Key:                      compositeKey(fieldUserID, userID, fieldNoteID, noteID),
		ConditionExpression:      aws.String("attribute_exists(#n)"),
		ExpressionAttributeNames: map[string]string{"#n": fieldNoteID},
	})
	if isConditionFailed(err) {
		return fmt.Errorf("note not found: %w", domain.ErrNotFound)
	}
	return err
}
