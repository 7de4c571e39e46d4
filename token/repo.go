package token

// KV is the persisted key-value backend behind the Store. Get reports found=false
// when the key does not exist; Delete of a missing key is not an error.
type KV interface {
	Get(key string) (value []byte, found bool, err error)
	Put(key string, value []byte) error
	Delete(key string) error
}
