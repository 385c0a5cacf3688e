package events

import (
	"context"
	"sync"
)

// Published - событие, сохранённое Recorder.
type Published struct {
	Key     string
	Payload any
}

// Recorder запоминает события в памяти. Используется в тестах и локальной разработке.
type Recorder struct {
	mu     sync.Mutex
	events []Published
}

func (r *Recorder) Publish(_ context.Context, key string, payload any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Published{Key: key, Payload: payload})
	return nil
}

// Keys возвращает ключи опубликованных событий по порядку.
func (r *Recorder) Keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Key)
	}
	return out
}

func (r *Recorder) Events() []Published {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Published(nil), r.events...)
}
