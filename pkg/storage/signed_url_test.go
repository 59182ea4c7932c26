package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSignedURLSignerGenerateAndParse(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, expiresAt, err := signer.Generate("export-1", "artifacts/records.csv")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.False(t, expiresAt.IsZero())

	exportID, path, parsedExpiry, err := signer.Parse(token, false)
	require.NoError(t, err)
	require.Equal(t, "export-1", exportID)
	require.Equal(t, "artifacts/records.csv", path)
	require.WithinDuration(t, expiresAt, parsedExpiry, time.Second)
}

func TestSignedURLSignerExpired(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Millisecond*10)
	token, _, err := signer.Generate("export-1", "artifacts/records.csv")
	require.NoError(t, err)
	time.Sleep(time.Millisecond * 20)

	_, _, _, err = signer.Parse(token, false)
	require.Error(t, err)

	exportID, path, _, err := signer.Parse(token, true)
	require.NoError(t, err)
	require.Equal(t, "export-1", exportID)
	require.Equal(t, "artifacts/records.csv", path)
}

func TestSignedURLSignerTamperedToken(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, _, err := signer.Generate("export-1", "artifacts/records.csv")
	require.NoError(t, err)

	_, _, _, err = signer.Parse(token+"0", false)
	require.Error(t, err)
}
