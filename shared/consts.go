package shared

const (
	// HashSize is the size of a single shabal256 digest, in bytes.
	HashSize = 32

	// ScoopSize is the size of one scoop record: two hashes.
	ScoopSize = HashSize * 2

	ScoopsPerNonce = 4096

	// NonceSize is the number of bytes a single nonce occupies in a plot file (256KiB).
	NonceSize = ScoopSize * ScoopsPerNonce

	// NumScoopPairs is the number of mirrored scoop pairs processed by a conversion.
	NumScoopPairs = ScoopsPerNonce / 2
)

// OwnerReadWrite is a standard owner read / write file permission.
const OwnerReadWrite = 0o600
