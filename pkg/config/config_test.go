package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWithDefaults(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte("server:\n  port: 9090\n"), 0644))

	require.NoError(t, Init(file))

	// 文件中的值覆盖默认值
	assert.Equal(t, 9090, GetInt("server.port"))
	assert.Equal(t, ":9090", GetServerAddress())

	// 未配置的键回落到默认值
	assert.Equal(t, "sqlite", GetString("database.type"))
	assert.Equal(t, "data/office_tools.db", GetDSN())
	assert.Equal(t, "local", GetString("storage.type"))
	assert.False(t, GetBool("mail.enabled"))
}
