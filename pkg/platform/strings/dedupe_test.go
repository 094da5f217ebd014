package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAddresses(t *testing.T) {
	got := DedupeAddresses([]string{"  Amira@Example.com ", "bob@example.com", "amira@example.com", "", "   "})
	assert.Equal(t, []string{"amira@example.com", "bob@example.com"}, got)
}

func TestDedupeAddressesEmpty(t *testing.T) {
	assert.Empty(t, DedupeAddresses(nil))
	assert.Empty(t, DedupeAddresses([]string{}))
}
