package auth

import (
	"encoding/base32"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyTOTP_CorrectCodeWithinSkew(t *testing.T) {
	secret := "JBSWY3DPEHPK3PXP"
	now := time.Unix(1_700_000_000, 0)

	key, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(strings.ToUpper(secret))
	require.NoError(t, err)
	code := generateTOTP(key, now.Unix()/30)

	assert.True(t, VerifyTOTP(secret, code, now))
	assert.True(t, VerifyTOTP(secret, code, now.Add(29*time.Second)))
	assert.False(t, VerifyTOTP(secret, code, now.Add(90*time.Second)))
}

func TestVerifyTOTP_RejectsMalformed(t *testing.T) {
	assert.False(t, VerifyTOTP("", "123456", time.Now()))
	assert.False(t, VerifyTOTP("JBSWY3DPEHPK3PXP", "12", time.Now()))
	assert.False(t, VerifyTOTP("not-base32!!", "123456", time.Now()))
}
