package capture

import (
	"bytes"
	"encoding/binary"
)

// wavHeader builds a streaming RIFF header with placeholder sizes,
// the payload is a header chunk followed by raw PCM chunks
func wavHeader(sampleRate, channels int) []byte {
	var buf bytes.Buffer
	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(0xFFFFFFFF))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	_ = binary.Write(&buf, binary.LittleEndian, int32(16))
	_ = binary.Write(&buf, binary.LittleEndian, int16(1))
	_ = binary.Write(&buf, binary.LittleEndian, int16(channels))
	_ = binary.Write(&buf, binary.LittleEndian, int32(sampleRate))
	_ = binary.Write(&buf, binary.LittleEndian, int32(sampleRate*channels*2))
	_ = binary.Write(&buf, binary.LittleEndian, int16(channels*2))
	_ = binary.Write(&buf, binary.LittleEndian, int16(16))

	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(0xFFFFFFFF))
	return buf.Bytes()
}

func pcmChunk(samples []int16) []byte {
	var buf bytes.Buffer
	for _, s := range samples {
		_ = binary.Write(&buf, binary.LittleEndian, s)
	}
	return buf.Bytes()
}
