package mailsink

import (
	"context"
	"sync"
)

// memStorage records calls and fails on configured paths.
type memStorage struct {
	mu         sync.Mutex
	dirs       []string
	files      map[string][]byte
	writeOrder []string

	failMkdir string
	failWrite string
	err       error
	pingErr   error
}

func (s *memStorage) MkdirAll(_ context.Context, dir string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if dir == s.failMkdir {
		return s.err
	}
	s.dirs = append(s.dirs, dir)
	return nil
}

func (s *memStorage) WriteFile(_ context.Context, name string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if name == s.failWrite {
		return s.err
	}
	if s.files == nil {
		s.files = make(map[string][]byte)
	}
	s.files[name] = data
	s.writeOrder = append(s.writeOrder, name)
	return nil
}

func (s *memStorage) Name() string { return "memory" }

func (s *memStorage) Ping(context.Context) error { return s.pingErr }
