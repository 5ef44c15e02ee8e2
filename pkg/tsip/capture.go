// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kaz Walker, Thermoquad

package tsip

import (
	"fmt"
	"io"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// Capture direction markers
const (
	DirRx = "rx"
	DirTx = "tx"
)

// CaptureRecord is one timestamped raw frame in a capture stream. Frames
// are stored exactly as they crossed the wire, stuffing included, so a
// replay exercises the decoder the same way the receiver did.
type CaptureRecord struct {
	T time.Time `cbor:"t"`
	D string    `cbor:"d"` // DirRx or DirTx
	B []byte    `cbor:"b"` // raw frame bytes
}

// CaptureWriter streams capture records as back-to-back CBOR values
type CaptureWriter struct {
	enc *cbor.Encoder
}

// NewCaptureWriter creates a capture writer on w
func NewCaptureWriter(w io.Writer) *CaptureWriter {
	return &CaptureWriter{enc: cbor.NewEncoder(w)}
}

// Write appends one record to the stream
func (c *CaptureWriter) Write(rec *CaptureRecord) error {
	if err := c.enc.Encode(rec); err != nil {
		return fmt.Errorf("failed to encode capture record: %w", err)
	}
	return nil
}

// Record stamps and writes one frame in the given direction
func (c *CaptureWriter) Record(dir string, frame []byte) error {
	rec := CaptureRecord{
		T: time.Now(),
		D: dir,
		B: append([]byte(nil), frame...),
	}
	return c.Write(&rec)
}

// CaptureReader streams capture records back out of a CBOR stream
type CaptureReader struct {
	dec *cbor.Decoder
}

// NewCaptureReader creates a capture reader on r
func NewCaptureReader(r io.Reader) *CaptureReader {
	return &CaptureReader{dec: cbor.NewDecoder(r)}
}

// Next returns the next record, io.EOF at end of stream
func (c *CaptureReader) Next() (*CaptureRecord, error) {
	var rec CaptureRecord
	if err := c.dec.Decode(&rec); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("failed to decode capture record: %w", err)
	}
	return &rec, nil
}
