package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCategoryKeyDistinguishesCase(t *testing.T) {
	parent := uuid.New()

	assert.NotEqual(t, categoryKey("Cables", &parent), categoryKey("cables", &parent),
		"sibling nodes differing only in case are distinct categories")
	assert.Equal(t, categoryKey("Cables", &parent), categoryKey("Cables", &parent))
}

func TestCategoryKeySeparatesParents(t *testing.T) {
	parent := uuid.New()

	assert.NotEqual(t, categoryKey("Cables", nil), categoryKey("Cables", &parent))
}
