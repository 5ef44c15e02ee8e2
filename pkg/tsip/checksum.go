// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kaz Walker, Thermoquad

package tsip

// XorChecksum computes the TSIPv1 packet checksum: XOR of every byte.
// A stored checksum is valid when XOR over the whole span, checksum byte
// included, comes out zero.
func XorChecksum(data []byte) byte {
	var sum byte
	for _, b := range data {
		sum ^= b
	}
	return sum
}

// v1ChecksumOK validates a TSIPv1 packet body against its trailing
// checksum. The checksum domain starts at the ID byte, which the framer
// strips from the body, so it is XORed back in here.
func v1ChecksumOK(id uint8, body []byte) bool {
	return XorChecksum(body)^id == 0
}
