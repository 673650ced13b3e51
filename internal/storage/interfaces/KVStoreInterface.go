package interfaces

// ExternalChange reports keys of a profile that were written by another handle.
type ExternalChange struct {
	Profile string
	Keys    []string
}

// KVStoreInterface is one handle on a profile's key space. Writes are synchronous and
// never reported back to the handle that made them.
type KVStoreInterface interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	// SetMany writes every pair or none of them.
	SetMany(values map[string]string) error
	Delete(keys ...string) error
	Subscribe(fn func(ExternalChange)) (unsubscribe func())
	Close() error
}

type BackendInterface interface {
	Open(profile string) (KVStoreInterface, error)
	Profiles() ([]string, error)
	Flush() error
	Close() error
}
