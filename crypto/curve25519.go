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

// The harness only needs to carry these values on the wire; it never signs
// nor verifies, so the types are plain fixed-size arrays.

// A Signature is a cryptographic signature. It proves that a message was
// produced by a holder of a cryptographic secret.
type Signature [64]byte

// A PublicKey is the public key of a signature keypair.
type PublicKey [32]byte

// A Seed holds the entropy needed to generate cryptographic keys.
type Seed [32]byte

// BlankSignature is an empty signature structure, containing nothing but zeroes.
var BlankSignature = Signature{}

// Blank returns true iff the signature is all zeroes.
func (s *Signature) Blank() bool {
	return *s == BlankSignature
}
