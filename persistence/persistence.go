package persistence

type BlockReader interface {
	ReadBlock(p []byte, off int64) error
	Size() int64
	Close() error
}

type BlockWriter interface {
	WriteBlock(p []byte, off int64) error
	Close() error
}
