package dynamo

// DynamoDB attribute names used in key and update expressions across repos.
// Using constants prevents silent runtime bugs caused by key typos.
const (
	fieldUserID       = "user_id"
	fieldEmail        = "email"
	fieldGoogleID     = "google_id"
	fieldDisplayName  = "display_name"
	fieldVerified     = "verified"
	fieldOTPCodeHash  = "otp_code_hash"
	fieldOTPExpiresAt = "otp_expires_at"
	fieldNoteID       = "note_id"
	fieldContent      = "content"
	fieldCreatedAt    = "created_at"
	fieldUpdatedAt    = "updated_at"

	indexUserID   = "user_id-index"
	indexGoogleID = "google_id-index"
)
