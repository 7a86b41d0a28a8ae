// internal/services/storage_service_test.go
package services

import (
	"bytes"
	"context"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 32)...)
	pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n")
)

// fileHeader round-trips data through a multipart form so the header is
// exactly what the HTTP layer hands the service.
func fileHeader(t *testing.T, name string, data []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })
	return form.File["file"][0]
}

func newLocalStorage(t *testing.T) (*StorageService, string) {
	t.Helper()
	root := t.TempDir()
	store, err := NewLocalStore(root, "http://localhost:8080/uploads/")
	require.NoError(t, err)
	svc := NewStorageServiceWithStore(store)
	svc.now = func() time.Time { return time.Date(2024, 5, 6, 9, 0, 0, 0, time.UTC) }
	return svc, root
}

func TestStorageService_UploadArtwork(t *testing.T) {
	svc, root := newLocalStorage(t)
	owner := Actor{ID: uuid.New()}

	res, err := svc.Upload(context.Background(), owner, CategoryArtwork, fileHeader(t, "Cover.PNG", pngBytes))
	require.NoError(t, err)

	assert.Equal(t, "image/png", res.MimeType)
	assert.EqualValues(t, len(pngBytes), res.Size)
	pattern := `^artwork/` + owner.ID.String() + `/20240506_[0-9a-f]{8}\.png$`
	assert.Regexp(t, regexp.MustCompile(pattern), res.Key)
	assert.Equal(t, "http://localhost:8080/uploads/"+res.Key, res.URL)

	written, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(res.Key)))
	require.NoError(t, err)
	assert.Equal(t, pngBytes, written)

	require.NoError(t, svc.Delete(context.Background(), res.Key))
	_, err = os.Stat(filepath.Join(root, filepath.FromSlash(res.Key)))
	assert.True(t, os.IsNotExist(err))
	require.NoError(t, svc.Delete(context.Background(), res.Key), "deleting twice is fine")
}

func TestStorageService_UploadAgreementPDF(t *testing.T) {
	svc, _ := newLocalStorage(t)
	res, err := svc.Upload(context.Background(), Actor{ID: uuid.New()}, CategoryAgreements, fileHeader(t, "deal.pdf", pdfBytes))
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", res.MimeType)
	assert.True(t, strings.HasPrefix(res.Key, "agreements/"))
}

func TestStorageService_Rejections(t *testing.T) {
	svc, _ := newLocalStorage(t)
	owner := Actor{ID: uuid.New()}
	ctx := context.Background()

	tests := []struct {
		name     string
		category string
		file     string
		data     []byte
		want     error
	}{
		{"unknown category", "videos", "a.png", pngBytes, ErrFileType},
		{"pdf as artwork", CategoryArtwork, "a.png", pdfBytes, ErrFileType},
		{"text renamed to pdf", CategoryAgreements, "a.pdf", []byte("hello there"), ErrFileType},
		{"signature too large", CategorySignatures, "sig.png", append(pngBytes, make([]byte, 2*1024*1024)...), ErrFileTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Upload(ctx, owner, tt.category, fileHeader(t, tt.file, tt.data))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestStorageService_LocalRoot(t *testing.T) {
	svc, root := newLocalStorage(t)
	got, ok := svc.LocalRoot()
	assert.True(t, ok)
	assert.Equal(t, root, got)
}
