package plot

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/spacemeshos/poc1to2/shared"
)

const (
	nameSeparator = "_"

	// minNameSegments is the number of leading segments that carry plot metadata.
	// Anything past them is ignored.
	minNameSegments = 4
)

var errTooFewSegments = errors.New("expected at least 4 `_`-delimited segments")

// Name is the metadata encoded in a PoC1 plot filename:
// `{id}_{startNonce}_{nonces}_{stagger}`.
type Name struct {
	ID         uint64
	StartNonce uint64
	Nonces     int64
	Stagger    int64
}

// ParseName parses a plot file base name. It checks the grammar only, layout
// and size rules are enforced by NewDescriptor.
func ParseName(name string) (Name, error) {
	parts := strings.Split(name, nameSeparator)
	if len(parts) < minNameSegments {
		return Name{}, &shared.MalformedFilenameError{Name: name, Err: errTooFewSegments}
	}

	var (
		n   Name
		err error
	)
	if n.ID, err = parseUint(parts[0]); err != nil {
		return Name{}, malformed(name, "id", parts[0], err)
	}
	if n.StartNonce, err = parseUint(parts[1]); err != nil {
		return Name{}, malformed(name, "start nonce", parts[1], err)
	}
	if n.Nonces, err = strconv.ParseInt(parts[2], 10, 64); err != nil {
		return Name{}, malformed(name, "nonces", parts[2], err)
	}
	if n.Stagger, err = strconv.ParseInt(parts[3], 10, 64); err != nil {
		return Name{}, malformed(name, "stagger", parts[3], err)
	}

	// Anything that can't describe a plot of addressable size is rejected here,
	// so that size arithmetic further down never overflows.
	if n.Nonces < 0 {
		return Name{}, malformed(name, "nonces", parts[2], errors.New("must not be negative"))
	}
	if n.Nonces > math.MaxInt64/shared.NonceSize {
		return Name{}, malformed(name, "nonces", parts[2], errors.New("plot size overflows int64"))
	}

	return n, nil
}

// PoC2Name returns the name of the converted plot. The stagger segment is
// dropped since PoC2 plots are never staggered.
func (n Name) PoC2Name() string {
	return strconv.FormatUint(n.ID, 10) + nameSeparator +
		strconv.FormatUint(n.StartNonce, 10) + nameSeparator +
		strconv.FormatInt(n.Nonces, 10)
}

// parseUint parses a decimal u64, allowing an explicit leading '+' the same
// way the signed fields do.
func parseUint(s string) (uint64, error) {
	return strconv.ParseUint(strings.TrimPrefix(s, "+"), 10, 64)
}

func malformed(name, field, value string, err error) error {
	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		err = numErr.Err
	}
	return &shared.MalformedFilenameError{Name: name, Field: field, Value: value, Err: err}
}
