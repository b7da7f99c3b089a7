// Package cache persists discovered GATT profiles so a reconnecting tool
// can skip service discovery.
package cache

import (
	"io/ioutil"
	"os"
	"sync"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/rigado/fsci"
	"github.com/rigado/fsci/gatt"
)

// ErrNotFound is returned by Load for an address with no stored profile.
var ErrNotFound = errors.New("profile not in cache")

// Profile is everything discovered on one peer.
type Profile struct {
	Services []gatt.Service `json:"services"`
}

// Find returns the characteristic of type u, if any service holds one.
func (p Profile) Find(u gatt.UUID) (gatt.Characteristic, bool) {
	for _, s := range p.Services {
		for _, c := range s.Characteristics {
			if c.UUID().Equal(u) {
				return c, true
			}
		}
	}
	return gatt.Characteristic{}, false
}

// GattCache stores profiles keyed by peer address.
type GattCache interface {
	Store(fsci.Addr, Profile, bool) error
	Load(fsci.Addr) (Profile, error)
	Clear() error
}

type gattCache struct {
	filename string
	lock     sync.RWMutex
}

// New returns a cache backed by a JSON file. The file is created on the
// first Store.
func New(filename string) GattCache {
	return &gattCache{filename: filename}
}

func (gc *gattCache) Store(a fsci.Addr, p Profile, replace bool) error {
	for _, s := range p.Services {
		if err := s.Validate(); err != nil {
			return errors.Wrapf(err, "can't cache profile of %s", a)
		}
	}

	gc.lock.Lock()
	defer gc.lock.Unlock()

	cache, err := gc.loadExisting()
	if err != nil {
		return err
	}

	if _, ok := cache[a.String()]; ok && !replace {
		return errors.Errorf("cache already contains a profile for %s", a)
	}
	cache[a.String()] = p

	return gc.storeCache(cache)
}

func (gc *gattCache) Load(a fsci.Addr) (Profile, error) {
	gc.lock.RLock()
	defer gc.lock.RUnlock()

	cache, err := gc.loadExisting()
	if err != nil {
		return Profile{}, err
	}

	p, ok := cache[a.String()]
	if !ok {
		return Profile{}, errors.Wrap(ErrNotFound, a.String())
	}
	return p, nil
}

func (gc *gattCache) Clear() error {
	gc.lock.Lock()
	defer gc.lock.Unlock()

	err := os.Remove(gc.filename)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (gc *gattCache) loadExisting() (map[string]Profile, error) {
	in, err := ioutil.ReadFile(gc.filename)
	if os.IsNotExist(err) {
		return map[string]Profile{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "can't read cache")
	}

	cache := map[string]Profile{}
	if err := jsoniter.Unmarshal(in, &cache); err != nil {
		return nil, errors.Wrapf(err, "can't decode cache %s", gc.filename)
	}
	return cache, nil
}

func (gc *gattCache) storeCache(cache map[string]Profile) error {
	out, err := jsoniter.Marshal(cache)
	if err != nil {
		return err
	}
	return ioutil.WriteFile(gc.filename, out, 0644)
}
