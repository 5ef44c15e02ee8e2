// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kaz Walker, Thermoquad

package tsip

import (
	"errors"
	"fmt"
	"io"
)

var (
	// ErrEmptyBody rejects framing a command with no body.
	ErrEmptyBody = errors.New("empty command body")

	// ErrBodyTooLong rejects bodies that could overflow the frame buffer
	// after stuffing doubles every DLE.
	ErrBodyTooLong = errors.New("command body too long")
)

// FrameCommand produces the on-wire form of a command body: leading DLE,
// the body with every 0x10 doubled, trailing DLE and ETX. The first body
// byte is the packet ID.
func FrameCommand(body []byte) ([]byte, error) {
	if len(body) == 0 {
		return nil, ErrEmptyBody
	}
	if len(body) > MaxCommandLen/2 {
		return nil, fmt.Errorf("%w: %d bytes, max %d", ErrBodyTooLong, len(body), MaxCommandLen/2)
	}

	frame := make([]byte, 0, len(body)*2+4)
	frame = append(frame, DLE)
	for _, b := range body {
		if b == DLE {
			frame = append(frame, DLE)
		}
		frame = append(frame, b)
	}
	frame = append(frame, DLE, ETX)
	return frame, nil
}

// Unstuff reverses FrameCommand: it strips the leading DLE, collapses
// doubled DLEs, and stops at the trailing DLE/ETX, returning the body.
func Unstuff(frame []byte) ([]byte, error) {
	if len(frame) < 4 || frame[0] != DLE {
		return nil, fmt.Errorf("not a framed packet (%d bytes)", len(frame))
	}
	body := make([]byte, 0, len(frame)-3)
	i := 1
	for i < len(frame) {
		b := frame[i]
		if b != DLE {
			body = append(body, b)
			i++
			continue
		}
		if i+1 >= len(frame) {
			return nil, errors.New("truncated frame: trailing DLE")
		}
		switch frame[i+1] {
		case DLE:
			body = append(body, DLE)
			i += 2
		case ETX:
			return body, nil
		default:
			return nil, fmt.Errorf("bare DLE before x%02x inside frame", frame[i+1])
		}
	}
	return nil, errors.New("frame missing DLE/ETX trailer")
}

// WriteCommand frames a command and writes it to w. A short write is an
// error. Callers honoring a read-only or passive mode must short-circuit
// before calling; Session.Send does that.
func WriteCommand(w io.Writer, cmd Command) error {
	frame, err := FrameCommand(cmd.Body)
	if err != nil {
		return fmt.Errorf("frame %s: %w", cmd.Label, err)
	}
	n, err := w.Write(frame)
	if err != nil {
		return fmt.Errorf("write %s: %w", cmd.Label, err)
	}
	if n != len(frame) {
		return fmt.Errorf("write %s: short write %d of %d", cmd.Label, n, len(frame))
	}
	return nil
}
