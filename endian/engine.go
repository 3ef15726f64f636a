// Package endian provides byte order utilities for the sequence layout.
//
// The EndianEngine interface combines ByteOrder and AppendByteOrder from
// encoding/binary. On top of it, PutSized and Sized read and write the
// length-like header and prefix fields whose width is selected by a
// format.SizeCode.
//
// Little-endian is the format default:
//
//	engine := endian.GetLittleEndianEngine()
//	endian.PutSized(engine, format.Size16, b, 300)
//
// All functions are safe for concurrent use.
package endian

import (
	"encoding/binary"
	"unsafe"

	"github.com/vaseug/PowerLib-sub000/format"
)

// EndianEngine combines ByteOrder and AppendByteOrder interfaces from encoding/binary
// into a single interface.
//
// binary.LittleEndian and binary.BigEndian both satisfy it.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// CheckEndianness uses a fixed integer value to determine the host's byte order.
func CheckEndianness() binary.ByteOrder {
	var probe uint16 = 0x0100
	b := (*[2]byte)(unsafe.Pointer(&probe))
	if b[0] == 0x01 {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

func IsNativeLittleEndian() bool {
	return CheckEndianness() == binary.LittleEndian
}

// GetLittleEndianEngine returns the little-endian engine.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}

// PutSized writes v into b[:code.Bytes()] using the engine's byte order.
//
// The caller guarantees len(b) >= code.Bytes() and v <= code.Max().
// Panics on an invalid code.
func PutSized(engine EndianEngine, code format.SizeCode, b []byte, v uint64) {
	switch code {
	case format.Size8:
		b[0] = uint8(v) //nolint:gosec
	case format.Size16:
		engine.PutUint16(b, uint16(v)) //nolint:gosec
	case format.Size32:
		engine.PutUint32(b, uint32(v)) //nolint:gosec
	case format.Size64:
		engine.PutUint64(b, v)
	default:
		panic("endian: invalid size code")
	}
}

// AppendSized appends v encoded in code.Bytes() bytes.
func AppendSized(engine EndianEngine, code format.SizeCode, b []byte, v uint64) []byte {
	switch code {
	case format.Size8:
		return append(b, uint8(v)) //nolint:gosec
	case format.Size16:
		return engine.AppendUint16(b, uint16(v)) //nolint:gosec
	case format.Size32:
		return engine.AppendUint32(b, uint32(v)) //nolint:gosec
	case format.Size64:
		return engine.AppendUint64(b, v)
	default:
		panic("endian: invalid size code")
	}
}

// Sized reads a code.Bytes()-wide unsigned integer from b.
func Sized(engine EndianEngine, code format.SizeCode, b []byte) uint64 {
	switch code {
	case format.Size8:
		return uint64(b[0])
	case format.Size16:
		return uint64(engine.Uint16(b))
	case format.Size32:
		return uint64(engine.Uint32(b))
	case format.Size64:
		return engine.Uint64(b)
	default:
		panic("endian: invalid size code")
	}
}
