package image_test

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/knode-ai-open-source/search-index-library/errs"
	"github.com/knode-ai-open-source/search-index-library/image"
	"github.com/knode-ai-open-source/search-index-library/indexbuilder"
	"github.com/stretchr/testify/require"
)

func userDataFor(docID uint32) []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, docID)
	return buf
}

func TestOpen_MissingFileIsNotFound(t *testing.T) {
	_, err := image.Open(filepath.Join(t.TempDir(), "missing"))
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestOpen_DetectsCorruptedChecksum(t *testing.T) {
	b := indexbuilder.New(t.TempDir(), nil, 4)
	require.NoError(t, b.Global(nil, 0, nil, userDataFor(0)))
	require.NoError(t, b.Term("x"))

	base := filepath.Join(t.TempDir(), "idx")
	require.NoError(t, b.Destroy(base))

	data, err := os.ReadFile(base + "_term_idx")
	require.NoError(t, err)
	data[0] ^= 0xFF
	require.NoError(t, os.WriteFile(base+"_term_idx", data, 0o644))

	_, err = image.Open(base)
	require.Error(t, err)
}
