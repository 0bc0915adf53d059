// SPDX-License-Identifier: GPL-3.0-or-later

package dbgp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameDecoderRoundTrip(t *testing.T) {
	payloads := [][]byte{
		[]byte(`<init appid="1"/>`),
		[]byte(`<response command="run" transaction_id="1"/>`),
		[]byte(`<stream type="stdout" encoding="base64">SGVsbG8=</stream>`),
	}

	var wire []byte
	for _, p := range payloads {
		wire = append(wire, EncodeFrame(p)...)
	}

	d := NewFrameDecoder()
	d.Feed(wire)

	var got [][]byte
	for {
		frame, ok := d.Next()
		if !ok {
			break
		}
		got = append(got, frame)
	}

	require.Len(t, got, len(payloads))
	for i := range payloads {
		assert.Equal(t, payloads[i], got[i])
	}
}

func TestFrameDecoderChunked(t *testing.T) {
	payload := []byte(`<init appid="1" idekey="k"/>`)
	wire := EncodeFrame(payload)

	d := NewFrameDecoder()
	var got []byte
	var ok bool
	for i := 0; i < len(wire); i++ {
		d.Feed(wire[i : i+1])
		if got, ok = d.Next(); ok {
			break
		}
	}

	require.True(t, ok)
	assert.Equal(t, payload, got)
}

func TestFrameDecoderMalformedLength(t *testing.T) {
	var errs []error
	d := NewFrameDecoder()
	d.OnFrameError = func(err error) { errs = append(errs, err) }

	d.Feed([]byte("notanumber\x00"))
	d.Feed(EncodeFrame([]byte(`<init appid="1"/>`)))

	frame, ok := d.Next()
	require.True(t, ok)
	assert.Equal(t, []byte(`<init appid="1"/>`), frame)
	assert.Len(t, errs, 1)
}

func TestFrameDecoderMissingTrailingNUL(t *testing.T) {
	var errs []error
	d := NewFrameDecoder()
	d.OnFrameError = func(err error) { errs = append(errs, err) }

	// Length says 4 bytes but the body is followed by a non-NUL byte.
	d.Feed([]byte("4\x00abcdX"))

	_, ok := d.Next()
	assert.False(t, ok)
	assert.Len(t, errs, 1)
}

func TestFrameDecoderNeedsMoreBytes(t *testing.T) {
	d := NewFrameDecoder()
	d.Feed([]byte("5\x00ab"))

	_, ok := d.Next()
	assert.False(t, ok)
}
