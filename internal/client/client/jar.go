package client

import (
	"errors"
	"fmt"
	"net/http"
	neturl "net/url"
	"os"
	"path/filepath"
	"sync"

	cookiejar "github.com/juju/persistent-cookiejar"
	"golang.org/x/net/publicsuffix"
)

// CookieJar is the jar HTTPClient keeps the backend's refresh cookie in.
type CookieJar interface {
	http.CookieJar
	// Clear forgets every cookie, including any copy on disk.
	Clear() error
}

// FileJar is a persistent-cookiejar that saves after every change, so the
// refresh cookie outlives the process. Cookies without an expiry belong to
// the current run and are never written.
type FileJar struct {
	mu   sync.Mutex
	jar  *cookiejar.Jar
	path string
}

var _ CookieJar = (*FileJar)(nil)

// NewFileJar opens the jar persisted at path. A missing file is an empty
// jar; an unreadable one is discarded.
func NewFileJar(path string) (*FileJar, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("cookie dir: %w", err)
	}

	jar, err := openJar(path)
	if err != nil {
		if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			return nil, fmt.Errorf("open cookie jar: %w", err)
		}
		if jar, err = openJar(path); err != nil {
			return nil, fmt.Errorf("open cookie jar: %w", err)
		}
	}
	return &FileJar{jar: jar, path: path}, nil
}

// NewMemoryJar returns a jar that never touches the disk.
func NewMemoryJar() *FileJar {
	jar, _ := cookiejar.New(&cookiejar.Options{
		PublicSuffixList: publicsuffix.List,
		NoPersist:        true,
	})
	return &FileJar{jar: jar}
}

func openJar(path string) (*cookiejar.Jar, error) {
	return cookiejar.New(&cookiejar.Options{
		PublicSuffixList: publicsuffix.List,
		Filename:         path,
	})
}

func (j *FileJar) Cookies(u *neturl.URL) []*http.Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.jar.Cookies(u)
}

// SetCookies stores cookies and saves the jar. http.CookieJar has no error
// return, so a failed save only costs the cookie's survival across runs.
func (j *FileJar) SetCookies(u *neturl.URL, cookies []*http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.jar.SetCookies(u, cookies)
	if j.path != "" {
		_ = j.jar.Save()
	}
}

func (j *FileJar) Clear() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.jar.RemoveAll()
	if j.path == "" {
		return nil
	}
	// Save merges with the file, so the file goes rather than being rewritten.
	if err := os.Remove(j.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove cookie file: %w", err)
	}
	return nil
}
