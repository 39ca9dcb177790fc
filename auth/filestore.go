package auth

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// credentialFile is the on-disk credentials format: one entry per method id.
type credentialFile struct {
	Credentials []credentialEntry `json:"credentials"`
}

type credentialEntry struct {
	Method   string            `json:"method"`
	Token    string            `json:"token,omitempty"`
	Username string            `json:"username,omitempty"`
	Password string            `json:"password,omitempty"`
	Cookies  map[string]string `json:"cookies,omitempty"`
	CertFile string            `json:"cert_file,omitempty"`
	KeyFile  string            `json:"key_file,omitempty"`
}

// FileStore loads credential bindings from a JSON file into a
// CredentialStore and reloads them when the file changes on disk. Close
// stops the watcher.
type FileStore struct {
	path    string
	store   *CredentialStore
	logger  *slog.Logger
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// FileStoreOption configures a FileStore.
type FileStoreOption func(*FileStore)

// WithFileStoreLogger sets the logger used for load and reload events.
func WithFileStoreLogger(l *slog.Logger) FileStoreOption {
	return func(fs *FileStore) { fs.logger = l }
}

// NewFileStore loads the credentials file into store and starts watching it
// for changes. The initial load must succeed; reload failures are logged and
// leave the previous bindings in place.
func NewFileStore(path string, store *CredentialStore, opts ...FileStoreOption) (*FileStore, error) {
	fs := &FileStore{
		path:   path,
		store:  store,
		logger: slog.Default(),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(fs)
	}
	if err := fs.load(); err != nil {
		return nil, err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("auth: watch credentials file: %w", err)
	}
	// Watch the directory: editors replace the file rather than write it in
	// place, which drops a watch registered on the file itself.
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, fmt.Errorf("auth: watch credentials file: %w", err)
	}
	fs.watcher = w
	go fs.watch()
	return fs, nil
}

// Close stops watching the credentials file. Bindings already loaded remain
// in the store.
func (fs *FileStore) Close() error {
	close(fs.done)
	return fs.watcher.Close()
}

func (fs *FileStore) watch() {
	for {
		select {
		case <-fs.done:
			return
		case ev, ok := <-fs.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(fs.path) {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if err := fs.load(); err != nil {
				fs.logger.Error("credentials reload failed", slog.String("path", fs.path), slog.String("err", err.Error()))
				continue
			}
			fs.logger.Info("credentials reloaded", slog.String("path", fs.path))
		case err, ok := <-fs.watcher.Errors:
			if !ok {
				return
			}
			fs.logger.Error("credentials watcher error", slog.String("err", err.Error()))
		}
	}
}

func (fs *FileStore) load() error {
	raw, err := os.ReadFile(fs.path)
	if err != nil {
		return fmt.Errorf("auth: read credentials file: %w", err)
	}
	var cf credentialFile
	if err := json.Unmarshal(raw, &cf); err != nil {
		return fmt.Errorf("auth: parse credentials file: %w", err)
	}
	for _, entry := range cf.Credentials {
		a, err := entry.authenticator()
		if err != nil {
			return err
		}
		fs.store.Add(entry.Method, a)
	}
	return nil
}

func (e credentialEntry) authenticator() (Authenticator, error) {
	switch {
	case e.Method == "":
		return nil, fmt.Errorf("auth: credentials file entry without method id")
	case len(e.Cookies) > 0:
		cookies := make([]*http.Cookie, 0, len(e.Cookies))
		for name, value := range e.Cookies {
			cookies = append(cookies, &http.Cookie{Name: name, Value: value})
		}
		return NewCookieAuth(cookies...), nil
	case e.Token != "":
		return NewBearerAuth(e.Token), nil
	case e.Username != "":
		return &BasicAuth{Username: e.Username, Password: e.Password}, nil
	case e.CertFile != "":
		return NewCertAuth(e.CertFile, e.KeyFile)
	default:
		return nil, fmt.Errorf("auth: credentials file entry for %s carries no credential", e.Method)
	}
}
