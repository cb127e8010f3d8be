package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashPassword(t *testing.T) {
	password := "TestPassword123"
	cost := 4

	hash, err := HashPassword(password, cost)
	assert.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, password, hash)
}

func TestCheckPassword(t *testing.T) {
	password := "TestPassword123"
	cost := 4

	hash, err := HashPassword(password, cost)
	assert.NoError(t, err)

	err = CheckPassword(password, hash)
	assert.NoError(t, err, "correct password should pass")

	err = CheckPassword("WrongPassword", hash)
	assert.Error(t, err, "wrong password should fail")
}
