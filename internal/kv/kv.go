// Package kv is a localStorage-shaped string store: one value per key,
// full overwrite on every write, last writer wins.
package kv

import (
	"encoding/json"

	"github.com/go-faster/errors"
)

// Well-known keys shared with the browser storefront.
const (
	KeyCart        = "mycart_v1"
	KeyUsers       = "users_v1"
	KeyCurrentUser = "current_user"
)

// Store is a persistent string key-value store.
type Store interface {
	// Get returns the stored value and whether the key exists.
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
	Keys() ([]string, error)
	Close() error
}

// GetJSON decodes the value under key into v. It reports false when the key is absent.
// A value that fails to decode is returned as an error and v is left untouched.
func GetJSON(s Store, key string, v any) (bool, error) {
	raw, ok, err := s.Get(key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return true, errors.Wrapf(err, "decode %s", key)
	}
	return true, nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "encode %s", key)
	}
	return s.Set(key, string(data))
}
