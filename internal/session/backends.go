package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileBackend keeps values in a JSON object on disk.
type FileBackend struct {
	mu   sync.Mutex
	path string
}

func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path}
}

func (f *FileBackend) read() (map[string]string, error) {
	values := make(map[string]string)
	b, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return values, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}
	if len(b) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(b, &values); err != nil {
		return nil, fmt.Errorf("decode session file: %w", err)
	}
	return values, nil
}

func (f *FileBackend) write(values map[string]string) error {
	if len(values) == 0 {
		err := os.Remove(f.path)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove session file: %w", err)
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	b, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session file: %w", err)
	}
	if err := os.WriteFile(f.path, b, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	return nil
}

func (f *FileBackend) Get(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	values, err := f.read()
	if err != nil {
		return "", false
	}
	v, ok := values[key]
	return v, ok
}

func (f *FileBackend) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	values, err := f.read()
	if err != nil {
		values = make(map[string]string)
	}
	values[key] = value
	return f.write(values)
}

func (f *FileBackend) Del(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	values, err := f.read()
	if err != nil {
		return f.write(nil)
	}
	delete(values, key)
	return f.write(values)
}

// CookieJar is a document.cookie style accessor: Read returns every
// "name=value" pair joined by "; ", Write applies one Set-Cookie string.
type CookieJar interface {
	Read() string
	Write(setCookie string)
}

// CookieBackend stores each value as its own cookie.
type CookieBackend struct {
	jar    CookieJar
	maxAge time.Duration
}

func NewCookieBackend(jar CookieJar, maxAge time.Duration) *CookieBackend {
	return &CookieBackend{jar: jar, maxAge: maxAge}
}

func (c *CookieBackend) Get(key string) (string, bool) {
	raw := c.jar.Read()
	if raw == "" {
		return "", false
	}
	cookies, err := http.ParseCookie(raw)
	if err != nil {
		return "", false
	}
	for _, ck := range cookies {
		if ck.Name == key {
			return ck.Value, true
		}
	}
	return "", false
}

func (c *CookieBackend) Set(key, value string) error {
	ck := &http.Cookie{
		Name:     key,
		Value:    value,
		Path:     "/",
		MaxAge:   int(c.maxAge.Seconds()),
		SameSite: http.SameSiteLaxMode,
	}
	if err := ck.Valid(); err != nil {
		return fmt.Errorf("cookie %s: %w", key, err)
	}
	c.jar.Write(ck.String())
	return nil
}

func (c *CookieBackend) Del(key string) error {
	ck := &http.Cookie{Name: key, Path: "/", MaxAge: -1}
	c.jar.Write(ck.String())
	return nil
}
