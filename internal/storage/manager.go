package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/yockii/office_tools/pkg/config"
)

// Storage 文档对象存储接口
type Storage interface {
	Save(objectName string, data []byte) error
	Load(objectName string) ([]byte, error)
	Delete(objectName string) error
}

var (
	mgr  Storage
	once sync.Once
)

// Init 按配置初始化存储后端
func Init() error {
	var err error
	once.Do(func() {
		switch st := config.GetString("storage.type"); st {
		case "", "local":
			mgr, err = newLocalStorage(config.GetString("storage.local.dir"))
		default:
			err = fmt.Errorf("unsupported storage type: %s", st)
		}
	})
	return err
}

// Get 获取存储实例，须先Init
func Get() Storage {
	return mgr
}

type localStorage struct {
	baseDir string
}

func newLocalStorage(baseDir string) (*localStorage, error) {
	if baseDir == "" {
		baseDir = "storage/documents"
	}
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}
	return &localStorage{baseDir: baseDir}, nil
}

func (s *localStorage) path(objectName string) (string, error) {
	// 防止路径穿越
	p := filepath.Join(s.baseDir, filepath.FromSlash(objectName))
	rel, err := filepath.Rel(s.baseDir, p)
	if err != nil || rel == ".." || len(rel) >= 3 && rel[:3] == ".."+string(filepath.Separator) {
		return "", fmt.Errorf("invalid object name: %s", objectName)
	}
	return p, nil
}

func (s *localStorage) Save(objectName string, data []byte) error {
	p, err := s.path(objectName)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return err
	}
	return os.WriteFile(p, data, 0644)
}

func (s *localStorage) Load(objectName string) ([]byte, error) {
	p, err := s.path(objectName)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func (s *localStorage) Delete(objectName string) error {
	p, err := s.path(objectName)
	if err != nil {
		return err
	}
	return os.Remove(p)
}
