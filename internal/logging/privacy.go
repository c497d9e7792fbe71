// TrackGuard - Wireless Tracking and Surveillance Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trackguard

package logging

import "strings"

// RedactAddress masks a hardware address for logging. The vendor prefix
// (first three octets) is kept so logs stay useful for triage; the
// device-specific suffix is replaced.
//
//	RedactAddress("AA:BB:CC:DD:EE:FF") // "AA:BB:CC:**:**:**"
//
// Non-MAC identifiers keep their first four characters.
func RedactAddress(address string) string {
	if address == "" {
		return ""
	}

	sep := ""
	switch {
	case strings.Count(address, ":") == 5:
		sep = ":"
	case strings.Count(address, "-") == 5:
		sep = "-"
	}
	if sep != "" {
		parts := strings.Split(address, sep)
		for i := 3; i < len(parts); i++ {
			parts[i] = "**"
		}
		return strings.Join(parts, sep)
	}

	if len(address) <= 4 {
		return "****"
	}
	return address[:4] + "****"
}

// RedactAddresses applies RedactAddress to each entry.
func RedactAddresses(addresses []string) []string {
	out := make([]string, len(addresses))
	for i, a := range addresses {
		out[i] = RedactAddress(a)
	}
	return out
}
