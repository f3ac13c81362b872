package config

import (
	"errors"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	dotenvOnce sync.Once
	cache      sync.Map // reflect.Type -> *entry
)

type entry struct {
	once  sync.Once
	value any
	err   error
}

func loadDotenv() {
	dotenvOnce.Do(func() {
		// A missing .env file is the normal case outside local development.
		_ = godotenv.Load()
	})
}

// Load populates v from the environment. The first successful parse of a type
// is cached and returned for every later call with the same type.
func Load[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}
	loadDotenv()

	key := reflect.TypeFor[T]()
	e, _ := cache.LoadOrStore(key, &entry{})
	ent := e.(*entry)

	ent.once.Do(func() {
		var parsed T
		if err := env.Parse(&parsed); err != nil {
			ent.err = errors.Join(ErrParsingConfig, err)
			return
		}
		ent.value = parsed
	})

	if ent.err != nil {
		// Drop the failed entry so a corrected environment can be retried.
		cache.CompareAndDelete(key, ent)
		return ent.err
	}
	*v = ent.value.(T)
	return nil
}
