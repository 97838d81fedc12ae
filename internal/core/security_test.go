// AngelaMos | 2026
// security_test.go

package core

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOTPCode_SixDigitsInRange(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := GenerateOTPCode()
		require.NoError(t, err)
		require.Len(t, code, 6)

		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, OTPMin)
		assert.LessOrEqual(t, n, OTPMax)
	}
}

func TestHashSecret_RoundTrip(t *testing.T) {
	hash, err := HashSecret("482913")
	require.NoError(t, err)
	assert.Contains(t, hash, "$argon2id$")

	ok, err := VerifySecret("482913", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifySecret("482914", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashSecret_SaltsDiffer(t *testing.T) {
	a, err := HashSecret("same")
	require.NoError(t, err)
	b, err := HashSecret("same")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestVerifySecret_RejectsMalformedHash(t *testing.T) {
	_, err := VerifySecret("x", "not-a-hash")
	assert.Error(t, err)

	_, err = VerifySecret("x", "$bcrypt$v=19$m=1,t=1,p=1$aa$bb")
	assert.Error(t, err)
}

func TestVerifySecretTimingSafe(t *testing.T) {
	hash, err := HashSecret("123456")
	require.NoError(t, err)

	ok, err := VerifySecretTimingSafe("123456", &hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifySecretTimingSafe("123456", nil)
	require.NoError(t, err)
	assert.False(t, ok)

	empty := ""
	ok, err = VerifySecretTimingSafe("123456", &empty)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSecretsEqual(t *testing.T) {
	assert.True(t, SecretsEqual("s3cret", "s3cret"))
	assert.False(t, SecretsEqual("s3cret", "s3cre"))
	assert.False(t, SecretsEqual("", "s3cret"))
}
