package domain

import "time"

// Note is a personal text note. PK: user_id, SK: note_id, so a note can only
// be addressed through its owner.
type Note struct {
	NoteID    string    `json:"_id" dynamodbav:"note_id"`
	UserID    string    `json:"userId" dynamodbav:"user_id"`
	Content   string    `json:"content" dynamodbav:"content"`
	CreatedAt time.Time `json:"createdAt" dynamodbav:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" dynamodbav:"updated_at"`
}

type NoteInput struct {
	Content string `json:"content" validate:"required"`
}
