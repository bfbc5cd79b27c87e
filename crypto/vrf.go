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

// A VrfProof for a message can be generated with a secret key and verified
// against a public key, like a signature. Proofs are malleable, however, for a
// given message and public key, the VRF output that can be computed from a
// proof is unique.
type VrfProof [80]byte

// VrfOutput is a deterministic unique identifier corresponding to a message
// and a VRF proof.
type VrfOutput [64]byte
