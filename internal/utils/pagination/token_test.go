package pagination

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecodeCursor(t *testing.T) {
	// Test case 1: Standard values
	createdAt := time.Date(2023, 5, 15, 14, 30, 45, 123456000, time.UTC)
	id := "6f1c0b5e-9a43-4a1b-8c11-2d7b3c8f9e10"

	token := EncodeCursor(createdAt, id)
	assert.NotEmpty(t, token, "Token should not be empty")

	decodedCreatedAt, decodedID, err := DecodeCursor(token)
	assert.NoError(t, err, "Decoding should not return an error")
	assert.Equal(t, createdAt, decodedCreatedAt, "Created at time should match after decode")
	assert.Equal(t, id, decodedID, "ID should match after decode")

	// Test case 2: Non-UTC input is normalised
	loc := time.FixedZone("IST", 5*3600+1800)
	local := time.Date(2024, 1, 1, 9, 0, 0, 0, loc)
	decodedLocal, _, err := DecodeCursor(EncodeCursor(local, id))
	assert.NoError(t, err)
	assert.True(t, local.Equal(decodedLocal), "Instants should match after decode")
}

func TestDecodeCursorErrors(t *testing.T) {
	// Test case 1: Not base64
	_, _, err := DecodeCursor("not-valid-base64!")
	assert.Error(t, err, "Should return error for invalid base64")

	// Test case 2: Missing separator
	_, _, err = DecodeCursor(EncodeMultiFieldToken("2023-05-15T00:00:00Z"))
	assert.Error(t, err, "Should return error for missing ID")

	// Test case 3: Bad time
	_, _, err = DecodeCursor(EncodeMultiFieldToken("yesterday", "abc"))
	assert.Error(t, err, "Should return error for invalid time")
}

func TestMultiFieldToken(t *testing.T) {
	fields := []string{"field1", "field2", "field3"}
	token := EncodeMultiFieldToken(fields...)
	assert.NotEmpty(t, token, "Token should not be empty")

	decodedFields, err := DecodeMultiFieldToken(token)
	assert.NoError(t, err, "Decoding should not return an error")
	assert.Equal(t, fields, decodedFields, "Fields should match after decode")
}
