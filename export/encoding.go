// Copyright 2024 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

// Package export moves the failed-message queue of a nonblocking application
// between databases.
package export

import (
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/maticnetwork/lzapp/core/types"
)

const dumpVersion = 1

var (
	errEmptyData          = errors.New("empty data")
	errUnknownMarker      = errors.New("unknown compression marker")
	errUnsupportedVersion = errors.New("unsupported dump version")
)

const (
	markerPlain      byte = 0x00
	markerCompressed byte = 0x01
)

// Compression metrics
var (
	compressionRatio    int64
	compressionCount    int64
	uncompressedCount   int64
	totalOriginalSize   int64
	totalCompressedSize int64
)

// CompressionStats returns current compression statistics
func CompressionStats() map[string]interface{} {
	compressed := atomic.LoadInt64(&compressionCount)
	uncompressed := atomic.LoadInt64(&uncompressedCount)

	var avgRatio float64
	if compressed > 0 {
		avgRatio = float64(atomic.LoadInt64(&compressionRatio)) / float64(compressed)
	}

	return map[string]interface{}{
		"compression_count":     compressed,
		"uncompressed_count":    uncompressed,
		"total_dumps":           compressed + uncompressed,
		"compression_ratio":     avgRatio,
		"total_original_size":   atomic.LoadInt64(&totalOriginalSize),
		"total_compressed_size": atomic.LoadInt64(&totalCompressedSize),
		"space_saved_bytes":     atomic.LoadInt64(&totalOriginalSize) - atomic.LoadInt64(&totalCompressedSize),
	}
}

// Dumps no larger than this are written uncompressed.
const compressionThreshold = 4 * 1024

// CompressionConfig holds configuration for dump compression
type CompressionConfig struct {
	Enabled          bool // Enable/disable compression
	Threshold        int  // Only compress dumps larger than this many bytes
	CompressionLevel int  // Gzip compression level (1-9)
}

// DefaultCompressionConfig returns the default compression configuration
func DefaultCompressionConfig() *CompressionConfig {
	return &CompressionConfig{
		Enabled:          true,
		Threshold:        compressionThreshold,
		CompressionLevel: gzip.BestCompression,
	}
}

// Entry is one pending failed message. Payload is empty when the
// application never saw the preimage of PayloadHash.
type Entry struct {
	SrcChainID  uint16
	SrcPath     []byte
	Nonce       uint64
	PayloadHash common.Hash
	Payload     []byte
}

// Message returns the message to retry, or nil without a payload. The
// payload of the returned message is never nil.
func (e *Entry) Message() *types.Message {
	if !e.HasPayload() {
		return nil
	}
	if e.Payload == nil {
		return types.NewMessage(e.SrcChainID, e.SrcPath, e.Nonce, []byte{})
	}
	return types.NewMessage(e.SrcChainID, e.SrcPath, e.Nonce, e.Payload)
}

// HasPayload reports whether the entry carries the payload it was stored
// for.
func (e *Entry) HasPayload() bool {
	return len(e.Payload) > 0 || e.PayloadHash == types.PayloadHash(nil)
}

// QueueDump is the failed-message queue of one application.
type QueueDump struct {
	App     common.Address
	ChainID uint16
	Entries []*Entry
}

// EncodeRLP serializes a dump as RLP.
func (d *QueueDump) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, &extQueueDump{
		Version: dumpVersion,
		App:     d.App,
		ChainID: d.ChainID,
		Entries: d.Entries,
	})
}

// DecodeRLP decodes a dump from RLP.
func (d *QueueDump) DecodeRLP(s *rlp.Stream) error {
	var ext extQueueDump
	if err := s.Decode(&ext); err != nil {
		return err
	}
	if ext.Version != dumpVersion {
		return fmt.Errorf("%w: %d", errUnsupportedVersion, ext.Version)
	}
	d.App, d.ChainID, d.Entries = ext.App, ext.ChainID, ext.Entries
	return nil
}

// EncodeCompressed serializes a dump, compressing it when cfg allows. A nil
// cfg selects the defaults.
func (d *QueueDump) EncodeCompressed(w io.Writer, cfg *CompressionConfig) error {
	if cfg == nil {
		cfg = DefaultCompressionConfig()
	}

	var rlpBuf bytes.Buffer
	if err := d.EncodeRLP(&rlpBuf); err != nil {
		return err
	}
	rlpData := rlpBuf.Bytes()
	originalSize := len(rlpData)

	atomic.AddInt64(&totalOriginalSize, int64(originalSize))

	if cfg.Enabled && originalSize > cfg.Threshold {
		var compressedBuf bytes.Buffer
		gw, err := gzip.NewWriterLevel(&compressedBuf, cfg.CompressionLevel)
		if err != nil {
			return err
		}
		if _, err := gw.Write(rlpData); err != nil {
			return err
		}
		if err := gw.Close(); err != nil {
			return err
		}
		compressedData := compressedBuf.Bytes()

		// Keep the plain form when gzip does not pay off.
		if len(compressedData) < originalSize {
			atomic.AddInt64(&compressionCount, 1)
			atomic.AddInt64(&totalCompressedSize, int64(len(compressedData)))
			atomic.AddInt64(&compressionRatio, int64(float64(len(compressedData))/float64(originalSize)*100))

			if _, err := w.Write([]byte{markerCompressed}); err != nil {
				return err
			}
			_, err = w.Write(compressedData)
			return err
		}
	}

	atomic.AddInt64(&uncompressedCount, 1)
	atomic.AddInt64(&totalCompressedSize, int64(originalSize))

	if _, err := w.Write([]byte{markerPlain}); err != nil {
		return err
	}
	_, err := w.Write(rlpData)
	return err
}

// DecodeCompressed decodes a dump written by EncodeCompressed.
func (d *QueueDump) DecodeCompressed(data []byte) error {
	if len(data) == 0 {
		return errEmptyData
	}

	var rlpData []byte
	switch data[0] {
	case markerCompressed:
		gr, err := gzip.NewReader(bytes.NewReader(data[1:]))
		if err != nil {
			return err
		}
		defer gr.Close()

		var buf bytes.Buffer
		if _, err := io.Copy(&buf, gr); err != nil {
			return err
		}
		rlpData = buf.Bytes()
	case markerPlain:
		rlpData = data[1:]
	default:
		return fmt.Errorf("%w: %#x", errUnknownMarker, data[0])
	}

	return rlp.DecodeBytes(rlpData, d)
}

// extQueueDump is the RLP encoding of a dump.
type extQueueDump struct {
	Version uint
	App     common.Address
	ChainID uint16
	Entries []*Entry
}
