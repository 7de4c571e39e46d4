package tokenfakerepo

import (
	"sync"

	"github.com/jrsteele09/tsdash/token"
)

var _ token.KV = (*FakeKV)(nil)

// FakeKV is an in-memory token.KV for tests. Setting Err makes every call fail.
type FakeKV struct {
	lock   sync.RWMutex
	values map[string][]byte
	Err    error
}

func NewFakeKV() *FakeKV {
	return &FakeKV{values: make(map[string][]byte)}
}

func (f *FakeKV) Get(key string) ([]byte, bool, error) {
	f.lock.RLock()
	defer f.lock.RUnlock()
	if f.Err != nil {
		return nil, false, f.Err
	}
	v, ok := f.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (f *FakeKV) Put(key string, value []byte) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	if f.Err != nil {
		return f.Err
	}
	f.values[key] = append([]byte(nil), value...)
	return nil
}

func (f *FakeKV) Delete(key string) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	if f.Err != nil {
		return f.Err
	}
	delete(f.values, key)
	return nil
}

// Raw sets the stored bytes directly, e.g. to simulate corrupt data.
func (f *FakeKV) Raw(key string, value []byte) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.values[key] = value
}

// Len returns the number of stored keys.
func (f *FakeKV) Len() int {
	f.lock.RLock()
	defer f.lock.RUnlock()
	return len(f.values)
}
