package badgerdb

import (
	"encoding/binary"
	"fmt"
	"math"

	"point-record/core/point"
)

const (
	pointTag  = 'p'
	seriesTag = 's'
	sep       = 0x00
	valueSize = 20
)

func pointPrefix(id string) []byte {
	b := make([]byte, 0, len(id)+3)
	b = append(b, pointTag, sep)
	b = append(b, id...)
	return append(b, sep)
}

func pointKey(id string, t int64) []byte {
	b := pointPrefix(id)
	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], uint64(t)^(1<<63))
	return append(b, ts[:]...)
}

func keyTime(key []byte) int64 {
	return int64(binary.BigEndian.Uint64(key[len(key)-8:]) ^ (1 << 63))
}

func seriesPrefix() []byte {
	return []byte{seriesTag, sep}
}

func seriesKey(id string) []byte {
	return append(seriesPrefix(), id...)
}

func encodeValue(p point.Point) []byte {
	b := make([]byte, valueSize)
	binary.BigEndian.PutUint64(b[0:8], math.Float64bits(p.Value))
	binary.BigEndian.PutUint32(b[8:12], uint32(p.Quality))
	binary.BigEndian.PutUint64(b[12:20], math.Float64bits(p.Confidence))
	return b
}

func decodePoint(key, val []byte) (point.Point, error) {
	if len(val) != valueSize {
		return point.Point{}, fmt.Errorf("corrupt point value: %d bytes", len(val))
	}
	return point.Point{
		Time:       keyTime(key),
		Value:      math.Float64frombits(binary.BigEndian.Uint64(val[0:8])),
		Quality:    point.Quality(binary.BigEndian.Uint32(val[8:12])),
		Confidence: math.Float64frombits(binary.BigEndian.Uint64(val[12:20])),
	}, nil
}
