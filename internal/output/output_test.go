package output

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	"github.com/spherical/pdf2text/internal/domain"
)

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "result.txt")

	require.NoError(t, WriteFile(path, "A\nB\n"))
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "A\nB\n", string(got))

	// Overwrites without asking.
	require.NoError(t, WriteFile(path, "Привет\n"))
	got, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Привет\n", string(got))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files are left behind")
}

func TestWriteFile_MissingDirectory(t *testing.T) {
	err := WriteFile(filepath.Join(t.TempDir(), "nope", "result.txt"), "x")
	require.Error(t, err)
	assert.True(t, domain.IsType(err, domain.ErrorTypeIO))
}

func TestParseGSURI(t *testing.T) {
	tests := []struct {
		uri        string
		wantBucket string
		wantObject string
		wantErr    bool
	}{
		{uri: "gs://bucket/result.txt", wantBucket: "bucket", wantObject: "result.txt"},
		{uri: "gs://bucket/runs/2024/result.txt", wantBucket: "bucket", wantObject: "runs/2024/result.txt"},
		{uri: "gs://bucket", wantErr: true},
		{uri: "gs://bucket/", wantErr: true},
		{uri: "gs:///object", wantErr: true},
		{uri: "s3://bucket/object", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			bucket, object, err := ParseGSURI(tt.uri)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, domain.IsType(err, domain.ErrorTypeConfig))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantBucket, bucket)
			assert.Equal(t, tt.wantObject, object)
		})
	}
}

func TestIsPreconditionFailed(t *testing.T) {
	assert.True(t, isPreconditionFailed(&googleapi.Error{Code: http.StatusPreconditionFailed}))
	assert.True(t, isPreconditionFailed(fmt.Errorf("write: %w", &googleapi.Error{Code: http.StatusPreconditionFailed})))
	assert.False(t, isPreconditionFailed(&googleapi.Error{Code: http.StatusForbidden}))
	assert.False(t, isPreconditionFailed(os.ErrNotExist))
}
