// Copyright (C) 2022-2024 Algorand, Inc.
// This file is part of netprobe
//
// netprobe is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// netprobe is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with netprobe.  If not, see <https://www.gnu.org/licenses/>.

package crypto

import (
	"crypto/rand"
	"crypto/sha512"
	"encoding/base32"

	"github.com/algorand/netprobe/logging"
)

// DigestSize is the number of bytes in the preferred hash Digest used here.
const DigestSize = sha512.Size256

// Digest represents a 32-byte value holding the 256-bit Hash digest.
type Digest [DigestSize]byte

// String returns the digest in a human-readable Base32 string.
func (d Digest) String() string {
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(d[:])
}

// IsZero returns true if the digest contains only zeros, false otherwise.
func (d Digest) IsZero() bool {
	return d == Digest{}
}

// Hash computes the SHA-512/256 hash of an array of bytes.
func Hash(data []byte) Digest {
	return sha512.Sum512_256(data)
}

// RandBytes fills the provided structure with a set of random bytes.
func RandBytes(dst []byte) {
	_, err := rand.Read(dst)
	if err != nil {
		logging.Base().Fatalf("failed to read random bytes: %v", err)
	}
}
