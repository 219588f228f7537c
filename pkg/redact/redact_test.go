package redact

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEmail(t *testing.T) {
	t.Parallel()

	require.Equal(t, "us***@example.com", Email("user@example.com"))
	require.Equal(t, "***@example.com", Email("ab@example.com"))
	require.Equal(t, "***", Email("not-an-email"))
}

func TestIdentifier(t *testing.T) {
	t.Parallel()

	require.Equal(t, "us***@example.com", Identifier("user@example.com"))
	require.Equal(t, "p***", Identifier("plainuser"))
	require.Equal(t, "", Identifier(""))
}

func TestToken(t *testing.T) {
	t.Parallel()

	require.Equal(t, "[REDACTED_TOKEN]", Token("short"))
	require.Equal(t, "[REDACTED_TOKEN]…wxyz", Token("abcdefghijklmnopqrstuvwxyz"))
	require.NotContains(t, Token("abcdefghijklmnop"), "abcdefghijkl")
}
