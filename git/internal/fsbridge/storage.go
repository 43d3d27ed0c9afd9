// Package fsbridge locates repositories on a billy filesystem and builds
// go-git object storage for them.
package fsbridge

import (
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-git/v5/plumbing/cache"
	"github.com/go-git/go-git/v5/storage/filesystem"
)

// NewStorage creates git storage over a git directory with an LRU object
// cache of cacheSizeMiB mebibytes. A non-positive size uses go-git's
// default cache size.
func NewStorage(gitDir billy.Filesystem, cacheSizeMiB int) *filesystem.Storage {
	size := cache.DefaultMaxSize
	if cacheSizeMiB > 0 {
		size = cache.FileSize(cacheSizeMiB) * cache.MiByte
	}

	objCache := cache.NewObjectLRU(size)
	return filesystem.NewStorage(gitDir, objCache)
}
