package contact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/basket/internal/memory"
	"github.com/mesh-intelligence/basket/pkg/types"
)

func TestValidate(t *testing.T) {
	valid := Form{Name: "Ada", Email: "ada@example.com", Message: "Hello there, friend."}

	tests := []struct {
		name   string
		form   Form
		failed []string
	}{
		{"valid", valid, nil},
		{"all empty", Form{}, []string{FieldName, FieldEmail, FieldMessage}},
		{"short name", Form{Name: " A ", Email: valid.Email, Message: valid.Message}, []string{FieldName}},
		{"email without domain dot", Form{Name: "Ada", Email: "ada@example", Message: valid.Message}, []string{FieldEmail}},
		{"email with space", Form{Name: "Ada", Email: "ada lovelace@example.com", Message: valid.Message}, []string{FieldEmail}},
		{"short message", Form{Name: "Ada", Email: valid.Email, Message: "too short"}, []string{FieldMessage}},
		{"message padded with spaces", Form{Name: "Ada", Email: valid.Email, Message: "   hi there   "}, []string{FieldMessage}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Validate(tt.form)
			assert.Equal(t, len(tt.failed) == 0, res.Valid())
			assert.Len(t, res, len(tt.failed))
			for _, f := range tt.failed {
				assert.Contains(t, res, f)
			}
		})
	}
}

func TestValidatorMinMessageLength(t *testing.T) {
	f := Form{Name: "Ada", Email: "ada@example.com", Message: "Hi there"}
	assert.False(t, Validate(f).Valid())
	assert.True(t, Validator{MinMessageLength: 5}.Validate(f).Valid())
	assert.Equal(t, "Message must be at least 20 characters.",
		Validator{MinMessageLength: 20}.Validate(f)[FieldMessage])
}

func TestSubmit(t *testing.T) {
	storage := memory.New()

	res, err := Submit(storage, Form{Name: "A"})
	assert.ErrorIs(t, err, types.ErrInvalidForm)
	assert.False(t, res.Valid())
	_, err = storage.GetItem(DefaultKey)
	assert.Error(t, err, "invalid forms must not be stored")

	_, err = Submit(storage, Form{Name: " Ada ", Email: "ada@example.com", Message: "First message here."})
	require.NoError(t, err)
	_, err = Submit(storage, Form{Name: "Grace", Email: "grace@example.com", Message: "Second message here."})
	require.NoError(t, err)

	msgs, err := Messages(storage)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "Ada", msgs[0].Name)
	assert.Equal(t, "Grace", msgs[1].Name)
	assert.False(t, msgs[0].SubmittedAt.IsZero())
}

func TestSubmitOverCorruptLog(t *testing.T) {
	storage := memory.New()
	require.NoError(t, storage.SetItem(DefaultKey, "oops"))

	_, err := Submit(storage, Form{Name: "Ada", Email: "ada@example.com", Message: "Hello there, friend."})
	require.NoError(t, err)

	msgs, err := Messages(storage)
	require.NoError(t, err)
	assert.Len(t, msgs, 1)
}
