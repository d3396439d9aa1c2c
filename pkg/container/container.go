// Package container wires the server's components lazily.
//
// Providers are registered per type and built on first use. Every built component can
// register a closer; Close runs them in reverse build order.
package container

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
)

type provider struct {
	build     func(*Container) (any, error)
	singleton bool
}

type Container struct {
	mu        sync.Mutex
	providers map[reflect.Type]provider
	instances map[reflect.Type]any
	building  map[reflect.Type]bool
	closers   []func() error
}

func New() *Container {
	return &Container{
		providers: make(map[reflect.Type]provider),
		instances: make(map[reflect.Type]any),
		building:  make(map[reflect.Type]bool),
	}
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Provide registers the constructor of T. Registering a type twice is an error.
func Provide[T any](c *Container, singleton bool, build func(*Container) (T, error)) error {
	t := typeOf[T]()
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.providers[t]; ok {
		return fmt.Errorf("container: provider already exists for %v", t)
	}
	c.providers[t] = provider{
		build:     func(c *Container) (any, error) { return build(c) },
		singleton: singleton,
	}
	return nil
}

// Value registers an already built singleton.
func Value[T any](c *Container, v T) error {
	return Provide(c, true, func(*Container) (T, error) { return v, nil })
}

// Resolve builds or returns T.
func Resolve[T any](c *Container) (T, error) {
	var zero T
	t := typeOf[T]()

	c.mu.Lock()
	if v, ok := c.instances[t]; ok {
		c.mu.Unlock()
		return v.(T), nil
	}
	p, ok := c.providers[t]
	if !ok {
		c.mu.Unlock()
		return zero, fmt.Errorf("container: no provider for %v", t)
	}
	if c.building[t] {
		c.mu.Unlock()
		return zero, fmt.Errorf("container: cyclic dependency for %v", t)
	}
	c.building[t] = true
	c.mu.Unlock()

	v, err := p.build(c)

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.building, t)
	if err != nil {
		return zero, fmt.Errorf("container: build %v: %w", t, err)
	}
	if p.singleton {
		c.instances[t] = v
	}
	return v.(T), nil
}

// MustResolve panics when T cannot be built. Only for use during startup.
func MustResolve[T any](c *Container) T {
	v, err := Resolve[T](c)
	if err != nil {
		panic(err)
	}
	return v
}

// OnClose registers a shutdown hook.
func (c *Container) OnClose(fn func() error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closers = append(c.closers, fn)
}

// Close runs the shutdown hooks newest first and joins their errors.
func (c *Container) Close() error {
	c.mu.Lock()
	closers := c.closers
	c.closers = nil
	c.mu.Unlock()

	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
