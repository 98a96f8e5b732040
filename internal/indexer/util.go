package indexer

import (
	"path/filepath"
	"time"
)

func parentOf(path string) string {
	return filepath.ToSlash(filepath.Dir(path))
}

func nowSeconds() int64 {
	return time.Now().Unix()
}
