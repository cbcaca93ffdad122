// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package match

import (
	"crypto/sha256"
	"fmt"
)

// Fingerprint computes the content fingerprint of a title: sha256 over
// the normalized form. Equal normalized titles always produce equal
// fingerprints, making it usable as a duplicate-candidate key.
func Fingerprint(title string) string {
	h := sha256.Sum256([]byte(NormalizeTitle(title)))
	return fmt.Sprintf("%x", h[:16])
}
