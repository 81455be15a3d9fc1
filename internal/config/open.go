package config

import (
	stderrors "errors"
	"io"
	"log/slog"

	"github.com/vango-dev/storectx/internal/errors"
	"github.com/vango-dev/storectx/pkg/persist"
)

// Handles are the backends Open installed as persist.Local and
// persist.Session.
type Handles struct {
	Local   persist.Storage
	Session persist.Storage

	// Watched maps a channel name to the file backend to watch for writes by
	// other processes. Only file backends with watch enabled appear here.
	Watched map[string]*persist.FileStorage

	closers  []io.Closer
	restores []func()
}

// Open builds the configured backends and installs them with
// persist.SetLocal and persist.SetSession. Close undoes both.
func Open(cfg *Config, logger *slog.Logger) (*Handles, error) {
	if logger == nil {
		logger = slog.Default()
	}

	h := &Handles{Watched: make(map[string]*persist.FileStorage)}

	local, err := h.open(cfg, persist.LocalName, cfg.Local, logger)
	if err != nil {
		h.Close()
		return nil, err
	}
	session, err := h.open(cfg, persist.SessionName, cfg.Session, logger)
	if err != nil {
		h.Close()
		return nil, err
	}

	h.Local, h.Session = local, session
	h.restores = append(h.restores, persist.SetLocal(local), persist.SetSession(session))

	logger.Info("storage opened",
		"local", cfg.Local.Backend,
		"session", cfg.Session.Backend,
		"tracing", cfg.Tracing.Enabled)
	return h, nil
}

func (h *Handles) open(cfg *Config, name string, sc StorageConfig, logger *slog.Logger) (persist.Storage, error) {
	logger = logger.With("channel", name)

	var s persist.Storage
	switch sc.Backend {
	case BackendMemory:
		s = persist.NewMemoryStorage()

	case BackendSQLite:
		db, err := persist.OpenSQLite(sc.SQLitePath, persist.WithSQLLogger(logger))
		if err != nil {
			return nil, errors.New(errors.CodeBackendOpen).WithSubject(sc.SQLitePath).Wrap(err)
		}
		h.closers = append(h.closers, db)
		s = db

	case BackendFile:
		fs, err := persist.NewFileStorage(sc.FileDir, persist.WithFileLogger(logger))
		if err != nil {
			return nil, errors.New(errors.CodeBackendOpen).WithSubject(sc.FileDir).Wrap(err)
		}
		if sc.Watch {
			h.Watched[name] = fs
		}
		s = fs

	case BackendS3:
		client, err := persist.NewS3Client(persist.S3ClientConfig{
			Region:       sc.S3.Region,
			Endpoint:     sc.S3.Endpoint,
			UsePathStyle: sc.S3.PathStyle,
		})
		if err != nil {
			return nil, errors.New(errors.CodeBackendOpen).WithSubject("s3://" + sc.S3.Bucket).Wrap(err)
		}
		s = persist.NewS3Storage(client, sc.S3.Bucket,
			persist.WithS3Prefix(sc.S3.Prefix),
			persist.WithS3Logger(logger))

	default:
		return nil, errors.New(errors.CodeUnknownBackend).WithSubject(name + ".backend=" + sc.Backend)
	}

	if cfg.Tracing.Enabled {
		s = persist.Traced(s, nil)
	}
	return s, nil
}

// Close restores the previously installed handles and closes the backends
// that hold resources.
func (h *Handles) Close() error {
	for i := len(h.restores) - 1; i >= 0; i-- {
		h.restores[i]()
	}
	h.restores = nil

	var errs []error
	for _, c := range h.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	h.closers = nil
	return stderrors.Join(errs...)
}
