// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kaz Walker, Thermoquad

package tsip

import (
	"fmt"
	"time"
)

// Decoder states
const (
	stateIdle = iota // hunting for a frame-start DLE
	stateID          // next byte is the packet ID
	stateBody        // collecting de-stuffed body bytes
	stateDLE         // saw a DLE inside the body
)

// Decoder is a byte-at-a-time de-framer for the legacy DLE-stuffed wire
// format. TSIPv1 reports ride in the same framing, so one decoder serves
// both generations; the generation split happens at dispatch.
type Decoder struct {
	state     int
	id        uint8
	body      []byte
	rawBuffer []byte // original bytes including framing
	skipped   int    // bytes dropped while hunting for sync
}

func NewDecoder() *Decoder {
	return &Decoder{
		state:     stateIdle,
		body:      make([]byte, 0, MaxPacketSize),
		rawBuffer: make([]byte, 0, MaxPacketSize*2),
	}
}

func (d *Decoder) Reset() {
	d.state = stateIdle
	d.id = 0
	d.body = d.body[:0]
	d.rawBuffer = d.rawBuffer[:0]
}

// Skipped returns the number of bytes dropped outside any frame since the
// decoder was created, a cheap desync indicator.
func (d *Decoder) Skipped() int {
	return d.skipped
}

// DecodeByte consumes one byte from the stream. It returns a complete
// packet when the trailing DLE/ETX arrives, an error when framing breaks,
// and (nil, nil) otherwise. Errors never stop the decoder; it resyncs on
// the next frame-start DLE.
func (d *Decoder) DecodeByte(b byte) (*Packet, error) {
	switch d.state {
	case stateIdle:
		if b == DLE {
			d.rawBuffer = append(d.rawBuffer[:0], b)
			d.state = stateID
			return nil, nil
		}
		d.skipped++
		return nil, nil

	case stateID:
		d.rawBuffer = append(d.rawBuffer, b)
		if b == DLE {
			// DLE DLE before an ID: still hunting
			d.rawBuffer = d.rawBuffer[:1]
			return nil, nil
		}
		if b == ETX {
			// empty DLE/ETX pair, common between bursts
			d.Reset()
			return nil, nil
		}
		d.id = b
		d.body = d.body[:0]
		d.state = stateBody
		return nil, nil

	case stateBody:
		d.rawBuffer = append(d.rawBuffer, b)
		if b == DLE {
			d.state = stateDLE
			return nil, nil
		}
		return d.appendBody(b)

	case stateDLE:
		d.rawBuffer = append(d.rawBuffer, b)
		switch b {
		case DLE:
			// stuffed DLE, one literal 0x10
			d.state = stateBody
			return d.appendBody(DLE)
		case ETX:
			pkt := &Packet{
				ID:        d.id,
				Body:      append([]byte(nil), d.body...),
				Raw:       append([]byte(nil), d.rawBuffer...),
				Timestamp: time.Now(),
			}
			d.Reset()
			return pkt, nil
		default:
			// a bare DLE starts a new frame; the old one never ended
			id := d.id
			d.Reset()
			d.rawBuffer = append(d.rawBuffer, DLE, b)
			d.id = b
			d.state = stateBody
			return nil, fmt.Errorf("unterminated x%02x packet, resyncing on x%02x", id, b)
		}

	default:
		d.Reset()
		return nil, fmt.Errorf("invalid decoder state %d", d.state)
	}
}

func (d *Decoder) appendBody(b byte) (*Packet, error) {
	if len(d.body) >= MaxPacketSize {
		id := d.id
		d.Reset()
		return nil, fmt.Errorf("x%02x packet exceeds %d bytes, dropped", id, MaxPacketSize)
	}
	d.body = append(d.body, b)
	return nil, nil
}
