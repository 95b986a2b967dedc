package storage_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"point-record/core/storage"
	"point-record/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestNewClient(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		useSSL   bool
		wantErr  bool
	}{
		{"HostPort", "localhost:9000", false, false},
		{"HTTPScheme", "http://localhost:9000", false, false},
		{"HTTPSScheme", "https://s3.amazonaws.com/", false, false},
		{"ForcedSSL", "s3.amazonaws.com", true, false},
		{"Empty", "", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := storage.NewClient(storage.Config{
				Endpoint:  tt.endpoint,
				AccessKey: "testkey",
				SecretKey: "testsecret",
				UseSSL:    tt.useSSL,
				Region:    "us-east-1",
			})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.NotNil(t, client)
		})
	}
}

func TestConfig_ExportPrefix(t *testing.T) {
	assert.Equal(t, "exports", storage.Config{}.ExportPrefix())
	assert.Equal(t, "exports", storage.Config{Prefix: "/"}.ExportPrefix())
	assert.Equal(t, "plant/a", storage.Config{Prefix: "/plant/a/"}.ExportPrefix())
}

func TestEnsureBucket(t *testing.T) {
	ctx := context.Background()

	t.Run("Exists", func(t *testing.T) {
		m := new(mocks.Client)
		m.On("BucketExists", ctx, "exports").Return(true, nil)

		assert.NoError(t, storage.EnsureBucket(ctx, m, "exports", ""))
		m.AssertNotCalled(t, "MakeBucket", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Created", func(t *testing.T) {
		m := new(mocks.Client)
		m.On("BucketExists", ctx, "exports").Return(false, nil)
		m.On("MakeBucket", ctx, "exports", minio.MakeBucketOptions{Region: "eu-west-1"}).Return(nil)

		assert.NoError(t, storage.EnsureBucket(ctx, m, "exports", "eu-west-1"))
		m.AssertExpectations(t)
	})

	t.Run("CheckFails", func(t *testing.T) {
		m := new(mocks.Client)
		m.On("BucketExists", ctx, "exports").Return(false, errors.New("denied"))

		assert.ErrorContains(t, storage.EnsureBucket(ctx, m, "exports", ""), "denied")
	})
}

func TestMockObjects(t *testing.T) {
	m := new(mocks.Client)
	m.On("ListObjects", mock.Anything, "b", mock.Anything).Return(mocks.Objects(
		minio.ObjectInfo{Key: "a", LastModified: time.Unix(1, 0)},
		minio.ObjectInfo{Key: "b"},
	))

	var keys []string
	for o := range m.ListObjects(context.Background(), "b", minio.ListObjectsOptions{}) {
		keys = append(keys, o.Key)
	}
	assert.Equal(t, []string{"a", "b"}, keys)
}
