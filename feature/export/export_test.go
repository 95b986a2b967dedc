package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"point-record/core/buffer"
	"point-record/core/point"
	"point-record/core/reconcile"
	"point-record/core/reconcile/adapters/badgerdb"
	"point-record/core/storage"
	"point-record/core/storage/mocks"

	"github.com/gofiber/fiber/v2"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testStorage = storage.Config{Bucket: "test-bucket"}

func setupTestApp(t *testing.T) (*fiber.App, *mocks.Client, *Service) {
	t.Helper()
	adapter := badgerdb.New(badgerdb.Config{InMemory: true}, nil)
	t.Cleanup(func() { adapter.Close() })

	rec, err := reconcile.NewRecord(&reconcile.Spec{Adapter: adapter, Buffer: buffer.New(buffer.Config{})})
	require.NoError(t, err)
	require.True(t, rec.AddPoints(context.Background(), "flow", []point.Point{
		point.New(100, 1), point.New(200, 2), point.New(300, 3),
	}))

	mockClient := new(mocks.Client)
	feature := NewFeature(rec, mockClient, testStorage, zap.NewNop())
	feature.service.now = func() time.Time { return time.Unix(1700000000, 0) }

	app := fiber.New()
	require.NoError(t, feature.Load(app))
	return app, mockClient, feature.service
}

func TestLoader(t *testing.T) {
	f := NewFeature(nil, new(mocks.Client), testStorage, nil)
	assert.Equal(t, "export", f.Name())
	assert.True(t, f.IsEnabled())

	assert.False(t, NewFeature(nil, nil, testStorage, nil).IsEnabled())
}

func TestObjectName(t *testing.T) {
	svc := NewService(nil, nil, testStorage, nil)
	assert.Equal(t, "exports/flow/100-200.json", svc.ObjectName("flow", point.TimeRange{Start: 100, End: 200}))

	name, err := svc.objectName("flow", "daily")
	require.NoError(t, err)
	assert.Equal(t, "exports/flow/daily.json", name)

	for _, bad := range []string{"", "..", "a/b"} {
		_, err := svc.objectName("flow", bad)
		assert.ErrorIs(t, err, ErrInvalidName, bad)
	}

	custom := NewService(nil, nil, storage.Config{Prefix: "/plant/"}, nil)
	assert.Equal(t, "plant/flow/", custom.Prefix("flow"))
}

func TestHandleExport(t *testing.T) {
	app, mockClient, _ := setupTestApp(t)

	var uploaded []byte
	mockClient.On("BucketExists", mock.Anything, "test-bucket").Return(false, nil)
	mockClient.On("MakeBucket", mock.Anything, "test-bucket", mock.Anything).Return(nil)
	mockClient.On("PutObject", mock.Anything, "test-bucket", "exports/flow/150-300.json", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			data, _ := io.ReadAll(args.Get(3).(io.Reader))
			uploaded = data
			assert.Equal(t, "application/json", args.Get(5).(minio.PutObjectOptions).ContentType)
		}).
		Return(minio.UploadInfo{Size: 123}, nil)

	resp, err := app.Test(httptest.NewRequest("POST", "/export/flow?start=150&end=300", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var res Result
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	assert.Equal(t, Result{Bucket: "test-bucket", Object: "exports/flow/150-300.json", Count: 2, Size: 123}, res)

	var snap Snapshot
	require.NoError(t, json.Unmarshal(uploaded, &snap))
	assert.Equal(t, "flow", snap.Series)
	assert.Equal(t, point.TimeRange{Start: 150, End: 300}, snap.Range)
	assert.Len(t, snap.Points, 2)
	assert.True(t, snap.ExportedAt.Equal(time.Unix(1700000000, 0)))
	mockClient.AssertExpectations(t)
}

func TestHandleExport_Errors(t *testing.T) {
	app, mockClient, _ := setupTestApp(t)

	resp, err := app.Test(httptest.NewRequest("POST", "/export/flow?start=300&end=100", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("POST", "/export/flow?start=x", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	mockClient.On("BucketExists", mock.Anything, "test-bucket").Return(false, errors.New("access denied"))
	resp, err = app.Test(httptest.NewRequest("POST", "/export/flow?start=0&end=1", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

func TestHandleList(t *testing.T) {
	app, mockClient, _ := setupTestApp(t)

	mockClient.On("ListObjects", mock.Anything, "test-bucket", minio.ListObjectsOptions{Prefix: "exports/flow/", Recursive: true}).
		Return(mocks.Objects(
			minio.ObjectInfo{Key: "exports/flow/100-200.json", Size: 10},
			minio.ObjectInfo{Key: "exports/flow/daily.json", Size: 20},
		))

	resp, err := app.Test(httptest.NewRequest("GET", "/export/flow", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var objects []Object
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&objects))
	require.Len(t, objects, 2)
	assert.Equal(t, "100-200.json", objects[0].Name)
	assert.Equal(t, int64(20), objects[1].Size)
}

func TestHandleFetchAndDelete(t *testing.T) {
	app, mockClient, _ := setupTestApp(t)

	doc := `{"series":"flow","range":{"start":1,"end":2},"points":[{"time":1,"value":5,"quality":192,"confidence":0}]}`
	mockClient.On("GetObject", mock.Anything, "test-bucket", "exports/flow/daily.json", mock.Anything).
		Return(io.NopCloser(bytes.NewReader([]byte(doc))), nil)
	mockClient.On("RemoveObject", mock.Anything, "test-bucket", "exports/flow/daily.json", mock.Anything).Return(nil)

	resp, err := app.Test(httptest.NewRequest("GET", "/export/flow/daily", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var snap Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	require.Len(t, snap.Points, 1)
	assert.Equal(t, 5.0, snap.Points[0].Value)

	resp, err = app.Test(httptest.NewRequest("DELETE", "/export/flow/daily.json", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	mockClient.AssertExpectations(t)
}

func TestService_ExportEmptySeries(t *testing.T) {
	_, mockClient, svc := setupTestApp(t)

	mockClient.On("BucketExists", mock.Anything, "test-bucket").Return(true, nil)
	mockClient.On("PutObject", mock.Anything, "test-bucket", "exports/none/custom.json", mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, nil)

	res, err := svc.Export(context.Background(), "none", point.TimeRange{Start: 0, End: 10}, "custom")
	require.NoError(t, err)
	assert.Equal(t, 0, res.Count)
	mockClient.AssertNotCalled(t, "MakeBucket", mock.Anything, mock.Anything, mock.Anything)
}
