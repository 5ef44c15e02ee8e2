// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kaz Walker, Thermoquad

package tsip

import (
	"bytes"
	"math/rand"
	"os"
	"strconv"
	"testing"
	"time"
)

// getFuzzRounds returns the number of fuzz rounds from FUZZ_ROUNDS env var, default 1000
func getFuzzRounds() int {
	if envRounds := os.Getenv("FUZZ_ROUNDS"); envRounds != "" {
		if rounds, err := strconv.Atoi(envRounds); err == nil && rounds > 0 {
			return rounds
		}
	}
	return 1000
}

// getFuzzSeed returns the seed from FUZZ_SEED env var, or generates one from current time
func getFuzzSeed() int64 {
	if envSeed := os.Getenv("FUZZ_SEED"); envSeed != "" {
		if seed, err := strconv.ParseInt(envSeed, 10, 64); err == nil {
			return seed
		}
	}
	return time.Now().UnixNano()
}

// newFuzzRng creates a new random number generator and logs the seed for reproducibility
func newFuzzRng(t *testing.T) *rand.Rand {
	seed := getFuzzSeed()
	t.Logf("Seed: %d (reproduce with FUZZ_SEED=%d)", seed, seed)
	return rand.New(rand.NewSource(seed))
}

// ============================================================
// Framing Fuzz Tests
// ============================================================

func TestFuzzDecoder_RandomBytes(t *testing.T) {
	rng := newFuzzRng(t)
	rounds := getFuzzRounds()

	d := NewDecoder()
	for i := 0; i < rounds; i++ {
		chunk := make([]byte, rng.Intn(256))
		rng.Read(chunk)
		for _, b := range chunk {
			d.DecodeByte(b)
		}
	}
	// line noise must never wedge or panic the framer
	t.Logf("skipped %d bytes hunting for sync", d.Skipped())
}

func TestFuzzFrameUnstuff_RoundTrip(t *testing.T) {
	rng := newFuzzRng(t)
	rounds := getFuzzRounds()

	for i := 0; i < rounds; i++ {
		body := make([]byte, 1+rng.Intn(MaxCommandLen/2))
		rng.Read(body)

		frame, err := FrameCommand(body)
		if err != nil {
			t.Fatalf("round %d: frame: %v", i, err)
		}
		back, err := Unstuff(frame)
		if err != nil {
			t.Fatalf("round %d: unstuff: %v", i, err)
		}
		if !bytes.Equal(body, back) {
			t.Fatalf("round %d: %x came back %x", i, body, back)
		}
	}
}

func TestFuzzDecoder_FramedRoundTrip(t *testing.T) {
	rng := newFuzzRng(t)
	rounds := getFuzzRounds()

	d := NewDecoder()
	for i := 0; i < rounds; i++ {
		body := make([]byte, 2+rng.Intn(120))
		rng.Read(body)
		// the first byte is the packet id; DLE and ETX there belong to
		// the framing layer, not to any packet
		for body[0] == DLE || body[0] == ETX {
			body[0] = byte(rng.Intn(256))
		}

		frame, err := FrameCommand(body)
		if err != nil {
			t.Fatalf("round %d: frame: %v", i, err)
		}
		pkts, errs := feedBytes(d, frame)
		if len(errs) != 0 {
			t.Fatalf("round %d: decode errors %v", i, errs)
		}
		if len(pkts) != 1 {
			t.Fatalf("round %d: %d packets from one frame", i, len(pkts))
		}
		if pkts[0].ID != body[0] || !bytes.Equal(pkts[0].Body, body[1:]) {
			t.Fatalf("round %d: %x decoded as id %02x body %x",
				i, body, pkts[0].ID, pkts[0].Body)
		}
	}
}

func TestFuzzDecoder_CorruptedFrames(t *testing.T) {
	rng := newFuzzRng(t)
	rounds := getFuzzRounds()

	d := NewDecoder()
	good := mustFrame(t, []byte{0x41, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10})
	for i := 0; i < rounds; i++ {
		body := make([]byte, 2+rng.Intn(64))
		rng.Read(body)
		frame, err := FrameCommand(body)
		if err != nil {
			t.Fatalf("round %d: frame: %v", i, err)
		}

		switch rng.Intn(3) {
		case 0: // flip a byte
			frame[rng.Intn(len(frame))] ^= 1 << uint(rng.Intn(8))
		case 1: // truncate
			frame = frame[:1+rng.Intn(len(frame)-1)]
		case 2: // duplicate a slice mid-frame
			cut := rng.Intn(len(frame))
			frame = append(frame[:cut:cut], append(frame[:cut:cut], frame[cut:]...)...)
		}
		feedBytes(d, frame)

		// the framer must resynchronize on the next clean frame
		d.Reset()
		pkts, errs := feedBytes(d, good)
		if len(errs) != 0 || len(pkts) != 1 || pkts[0].ID != 0x41 {
			t.Fatalf("round %d: no recovery after corruption: %v %v", i, pkts, errs)
		}
	}
}

// ============================================================
// Dispatch Fuzz Tests
// ============================================================

func TestFuzzParse_RandomPackets(t *testing.T) {
	rng := newFuzzRng(t)
	rounds := getFuzzRounds()

	s := NewSession(SessionOptions{})
	for i := 0; i < rounds; i++ {
		body := make([]byte, rng.Intn(64))
		rng.Read(body)
		s.Parse(&Packet{ID: byte(rng.Intn(256)), Body: body})
	}
}

func TestFuzzParse_MinimumLengthBodies(t *testing.T) {
	rng := newFuzzRng(t)
	rounds := getFuzzRounds()

	ids := make([]byte, 0, len(legacyTable))
	for id := range legacyTable {
		ids = append(ids, id)
	}

	s := NewSession(SessionOptions{})
	for i := 0; i < rounds; i++ {
		id := ids[rng.Intn(len(ids))]
		body := make([]byte, legacyTable[id].min+rng.Intn(8))
		rng.Read(body)
		s.Parse(&Packet{ID: id, Body: body})
	}
}

func TestFuzzParseV1_RandomValidEnvelope(t *testing.T) {
	rng := newFuzzRng(t)
	rounds := getFuzzRounds()

	v1IDs := []uint8{0x90, 0x91, 0x92, 0x93, 0xa0, 0xa1, 0xa2, 0xa3, 0xa4, 0xa5, 0xd0}

	s := NewSession(SessionOptions{})
	for i := 0; i < rounds; i++ {
		id := v1IDs[rng.Intn(len(v1IDs))]
		payload := make([]byte, rng.Intn(100))
		rng.Read(payload)
		body := v1Body(id, byte(rng.Intn(64)), V1ModeReport, payload)
		s.ParseV1(id, body)
	}
}

func TestFuzzParseV1_RandomGarbageBodies(t *testing.T) {
	rng := newFuzzRng(t)
	rounds := getFuzzRounds()

	s := NewSession(SessionOptions{})
	for i := 0; i < rounds; i++ {
		body := make([]byte, rng.Intn(128))
		rng.Read(body)
		s.ParseV1(IDv1PVT, body)
	}
}
