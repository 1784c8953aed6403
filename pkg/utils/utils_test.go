package utils_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"go-catalog-api/pkg/utils"
)

func TestPasswordHashing(t *testing.T) {
	h := utils.HashPassword("tops3cret")
	assert.NotEqual(t, "tops3cret", h)
	assert.True(t, utils.CheckPassword("tops3cret", h))
	assert.False(t, utils.CheckPassword("wrong", h))
}

func TestResetToken(t *testing.T) {
	plain, hashed := utils.NewResetToken()
	assert.Len(t, plain, 64)
	assert.NotEqual(t, plain, hashed)
	assert.Equal(t, hashed, utils.HashToken(plain))

	plain2, _ := utils.NewResetToken()
	assert.NotEqual(t, plain, plain2)
}
