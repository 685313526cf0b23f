// Package observer provides small callback registries with per-callback
// failure isolation. A subscriber that panics is logged and skipped; the
// remaining subscribers still run. Registries are driven from the single
// engine goroutine and are not safe for concurrent use.
package observer

import (
	"github.com/sirupsen/logrus"

	"github.com/elimuro/rglr-gnrtr-engine/logger"
)

// Registry holds an ordered set of subscribers for one event type.
type Registry[T any] struct {
	name   string
	nextID int
	order  []int
	subs   map[int]func(T)
}

// NewRegistry creates a registry. The name shows up in dispatch failure logs.
func NewRegistry[T any](name string) *Registry[T] {
	return &Registry[T]{
		name: name,
		subs: make(map[int]func(T)),
	}
}

// Subscribe registers fn and returns a function that removes it again.
func (r *Registry[T]) Subscribe(fn func(T)) func() {
	id := r.nextID
	r.nextID++
	r.subs[id] = fn
	r.order = append(r.order, id)
	return func() {
		if _, ok := r.subs[id]; !ok {
			return
		}
		delete(r.subs, id)
		for i, v := range r.order {
			if v == id {
				r.order = append(r.order[:i], r.order[i+1:]...)
				break
			}
		}
	}
}

// Len returns the number of registered subscribers.
func (r *Registry[T]) Len() int {
	return len(r.subs)
}

// Notify dispatches ev to every subscriber in registration order. A panic in
// one subscriber never prevents the rest from running.
func (r *Registry[T]) Notify(ev T) {
	for _, id := range r.order {
		fn, ok := r.subs[id]
		if !ok {
			continue
		}
		r.dispatch(fn, ev)
	}
}

func (r *Registry[T]) dispatch(fn func(T), ev T) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.GetProjectLogger().WithFields(logrus.Fields{
				"registry": r.name,
				"panic":    rec,
			}).Error("observer callback failed; continuing dispatch")
		}
	}()
	fn(ev)
}
