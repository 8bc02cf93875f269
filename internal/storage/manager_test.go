package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s, err := newLocalStorage(dir)
	require.NoError(t, err)

	require.NoError(t, s.Save("2026/08/25/report.docx", []byte("docx数据")))

	data, err := s.Load("2026/08/25/report.docx")
	require.NoError(t, err)
	assert.Equal(t, []byte("docx数据"), data)

	require.NoError(t, s.Delete("2026/08/25/report.docx"))
	_, err = s.Load("2026/08/25/report.docx")
	assert.True(t, os.IsNotExist(err))
}

func TestLocalStorageRejectsPathTraversal(t *testing.T) {
	dir := t.TempDir()
	s, err := newLocalStorage(dir)
	require.NoError(t, err)

	err = s.Save("../escape.docx", []byte("x"))
	assert.Error(t, err)

	_, err = s.Load("../../etc/passwd")
	assert.Error(t, err)
}

func TestLocalStorageCreatesNestedDirs(t *testing.T) {
	dir := t.TempDir()
	s, err := newLocalStorage(dir)
	require.NoError(t, err)

	require.NoError(t, s.Save("templates/2026/08/25/a.docx", []byte("tpl")))
	_, err = os.Stat(filepath.Join(dir, "templates", "2026", "08", "25", "a.docx"))
	assert.NoError(t, err)
}
