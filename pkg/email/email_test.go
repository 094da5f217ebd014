package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Amira Khan", DisplayName("amira.khan@example.com"))
	assert.Equal(t, "Bob", DisplayName("bob@example.com"))
	assert.Equal(t, "Jo Ann Smith", DisplayName("jo_ann-smith@example.com"))
	assert.Equal(t, "Adventurer", DisplayName("@example.com"))
}
