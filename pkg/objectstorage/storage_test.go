package objectstorage

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	_ = logger.Initialize(logger.Config{Level: "error", Environment: "test", ServiceName: "test"})
}

func TestValidateContentType(t *testing.T) {
	client := &StorageClient{}

	tests := []struct {
		name        string
		contentType string
		wantErr     bool
	}{
		{"valid jpeg", "image/jpeg", false},
		{"valid png", "image/png", false},
		{"valid webp", "image/webp", false},
		{"valid pdf", "application/pdf", false},
		{"valid epub", "application/epub+zip", false},
		{"uppercase is normalized", "IMAGE/PNG", false},
		{"invalid gif", "image/gif", true},
		{"invalid svg", "image/svg+xml", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := client.ValidateContentType(tt.contentType)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateSize(t *testing.T) {
	client := &StorageClient{}

	small := base64.StdEncoding.EncodeToString([]byte("hello"))
	assert.NoError(t, client.ValidateSize(small))

	big := base64.StdEncoding.EncodeToString(make([]byte, 11*1024*1024))
	err := client.ValidateSize(big)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file too large")

	assert.Error(t, client.ValidateSize("not-base64!!!"))
}

func TestDecodeBase64Payload(t *testing.T) {
	raw, err := decodeBase64Payload("data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("png-bytes")))
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), raw)

	_, err = decodeBase64Payload("data:image/png;base64")
	assert.Error(t, err)
}

func TestGenerateKey(t *testing.T) {
	client := &StorageClient{}

	key := client.GenerateKey("courses", "owner-123", "Cover Photo.PNG")
	assert.True(t, strings.HasPrefix(key, "courses/owner-123/"))
	assert.True(t, strings.HasSuffix(key, ".png"))

	other := client.GenerateKey("courses", "owner-123", "Cover Photo.PNG")
	assert.NotEqual(t, key, other)
}
