package credential

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredential_Redaction(t *testing.T) {
	c := New("super-secret-token-12345")

	assert.Equal(t, "super-secret-token-12345", c.Value())
	assert.Equal(t, "Token: [REDACTED]", fmt.Sprintf("Token: %s", c))
	assert.Equal(t, "Token: [REDACTED]", fmt.Sprintf("Token: %v", c))
	assert.Equal(t, "credential.Credential{[REDACTED]}", fmt.Sprintf("%#v", c))

	err := fmt.Errorf("request with %v failed", c)
	assert.NotContains(t, err.Error(), "super-secret")
}

func TestCredential_JSON(t *testing.T) {
	payload := struct {
		Token Credential `json:"token"`
	}{Token: New("secret")}

	data, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"token":"[REDACTED]"}`, string(data))
}

func TestCredential_IsEmpty(t *testing.T) {
	assert.True(t, Credential{}.IsEmpty())
	assert.True(t, New("").IsEmpty())
	assert.False(t, New("x").IsEmpty())
}
