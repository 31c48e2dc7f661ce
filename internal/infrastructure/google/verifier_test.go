package google

import (
	"context"
	"errors"
	"testing"

	"github.com/notes-api-nosql/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/idtoken"
)

func stubVerifier(p *idtoken.Payload, err error) (*Verifier, *string) {
	var gotAudience string
	v := NewVerifier("client-123")
	v.validate = func(_ context.Context, _, audience string) (*idtoken.Payload, error) {
		gotAudience = audience
		return p, err
	}
	return v, &gotAudience
}

func TestVerify_EmptyToken(t *testing.T) {
	v, _ := stubVerifier(nil, nil)
	_, err := v.Verify(context.Background(), "")
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestVerify_ValidationFails(t *testing.T) {
	v, _ := stubVerifier(nil, errors.New("idtoken: token expired"))
	_, err := v.Verify(context.Background(), "raw-id-token-secret")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidToken))
	assert.NotContains(t, err.Error(), "raw-id-token-secret")
}

func TestVerify_NilPayload(t *testing.T) {
	v, _ := stubVerifier(nil, nil)
	_, err := v.Verify(context.Background(), "tok")
	assert.True(t, errors.Is(err, domain.ErrMissingPayload))
}

func TestVerify_MissingEmail(t *testing.T) {
	v, _ := stubVerifier(&idtoken.Payload{Subject: "g1", Claims: map[string]interface{}{}}, nil)
	_, err := v.Verify(context.Background(), "tok")
	assert.True(t, errors.Is(err, domain.ErrMissingPayload))
}

func TestVerify_MissingSubject(t *testing.T) {
	v, _ := stubVerifier(&idtoken.Payload{Claims: map[string]interface{}{"email": "a@x.com"}}, nil)
	_, err := v.Verify(context.Background(), "tok")
	assert.True(t, errors.Is(err, domain.ErrMissingPayload))
}

func TestVerify_ExtractsClaims(t *testing.T) {
	v, aud := stubVerifier(&idtoken.Payload{
		Subject: "g1",
		Claims: map[string]interface{}{
			"email":          "Ann@X.com",
			"email_verified": true,
			"name":           "Ann",
		},
	}, nil)

	id, err := v.Verify(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "client-123", *aud)
	assert.Equal(t, &domain.GoogleIdentity{Subject: "g1", Email: "ann@x.com", Name: "Ann", EmailVerified: true}, id)
}

func TestVerify_NameFallsBackToGivenFamily(t *testing.T) {
	v, _ := stubVerifier(&idtoken.Payload{
		Subject: "g1",
		Claims: map[string]interface{}{
			"email":       "a@x.com",
			"given_name":  "Ann",
			"family_name": "Lee",
		},
	}, nil)

	id, err := v.Verify(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "Ann Lee", id.Name)
	assert.False(t, id.EmailVerified)
}
