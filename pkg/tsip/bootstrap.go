// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kaz Walker, Thermoquad

package tsip

// bootState tracks how far receiver identification has come. A session
// starts blind, learns the hardware code from x1c-83 (or a TSIPv1 version
// report), and sends one configuration batch on that transition.
type bootState int

const (
	bootUnidentified bootState = iota
	bootModelKnown
	bootConfigured
)

// configureForHardware picks the one-shot setup batch once the hardware
// code arrives. Fires only on the Unidentified -> ModelKnown transition;
// a repeated x1c-83 does not reconfigure a running receiver.
func (s *Session) configureForHardware(code int) []Command {
	s.HardwareCode = code
	if s.boot >= bootModelKnown {
		return nil
	}
	s.boot = bootConfigured

	switch code {
	case HWAcutimeGold:
		return ConfigureAcutimeGold()
	case HWResolutionT, HWResolutionSMT, HWResolutionSMTx, HWResSMT360,
		HWICMSMT360, HWRES36017x22, HWRES720:
		// Only this family honors passive; the batch degrades to
		// pure queries instead of being suppressed.
		return ConfigureRES360(s.Passive)
	default:
		// Lassen iQ, Copernicus, Thunderbolt E, Acutime 360 and
		// anything unrecognized all take the generic batch.
		return ConfigureGeneric()
	}
}
