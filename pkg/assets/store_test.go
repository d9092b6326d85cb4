package assets

import (
	"bytes"
	"mime/multipart"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joao-felipe-alves-marinho/bookbear-api/pkg/errcodes"
)

// pngHeader is enough for content sniffing to call it image/png.
var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func testFileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	fw, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r := multipart.NewReader(body, w.Boundary())
	form, err := r.ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() {
		form.RemoveAll()
	})

	return form.File["file"][0]
}

func TestSave_StoresImageUnderKind(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	fh := testFileHeader(t, "avatar.png", pngHeader)
	relPath, err := store.Save(KindAvatar, fh)
	require.NoError(t, err)

	assert.Equal(t, KindAvatar, filepath.Dir(relPath))
	assert.Equal(t, ".png", filepath.Ext(relPath))

	_, err = os.Stat(store.FilePath(relPath))
	assert.NoError(t, err)
}

func TestSave_RejectsNonImage(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	fh := testFileHeader(t, "notes.txt", []byte("plain text, not an image"))
	_, err = store.Save(KindCover, fh)
	require.Error(t, err)

	ec := &errcodes.Error{}
	require.ErrorAs(t, err, &ec)
	assert.Equal(t, 422, ec.HTTPCode)
}

func TestRemove_Idempotent(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	fh := testFileHeader(t, "logo.png", pngHeader)
	relPath, err := store.Save(KindLogo, fh)
	require.NoError(t, err)

	require.NoError(t, store.Remove(relPath))
	// Removing again, or removing nothing, is not an error.
	assert.NoError(t, store.Remove(relPath))
	assert.NoError(t, store.Remove(""))
	assert.NoError(t, store.RemoveRef(nil))
}
