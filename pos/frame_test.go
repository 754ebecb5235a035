package pos

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func statusDoc() []byte {
	return []byte("<GetLoyaltyOnlineStatusRequest><POSSequenceID>1</POSSequenceID></GetLoyaltyOnlineStatusRequest>")
}

func rewardsDoc() []byte {
	return []byte("<GetRewardsRequest><POSSequenceID>2</POSSequenceID></GetRewardsRequest>")
}

func TestEncodeFrameLayout(t *testing.T) {
	payload := statusDoc()
	framed := EncodeFrame(payload)

	require.Len(t, framed, frameHeaderSize+len(payload))
	assert.Equal(t, frameSignature, framed[:12])
	assert.Equal(t, uint32(frameAction), binary.LittleEndian.Uint32(framed[12:16]))
	assert.Equal(t, uint32(len(payload)), binary.LittleEndian.Uint32(framed[16:20]))
	assert.Equal(t, payload, framed[frameHeaderSize:])
}

func TestExtractPayloadsRoundtrip(t *testing.T) {
	framed := EncodeFrame(statusDoc())

	payloads, rest := ExtractPayloads(framed)
	require.Len(t, payloads, 1)
	assert.Equal(t, statusDoc(), payloads[0])
	assert.Empty(t, rest)
}

func TestExtractPayloadsPartialFrame(t *testing.T) {
	framed := EncodeFrame(statusDoc())

	// Header alone: nothing extracted, everything retained.
	payloads, rest := ExtractPayloads(framed[:frameHeaderSize])
	assert.Empty(t, payloads)
	assert.Equal(t, framed[:frameHeaderSize], rest)

	// All but the last byte: still waiting.
	payloads, rest = ExtractPayloads(framed[:len(framed)-1])
	assert.Empty(t, payloads)
	assert.Equal(t, framed[:len(framed)-1], rest)
}

func TestExtractPayloadsCRCMismatchDropsFrame(t *testing.T) {
	framed := EncodeFrame(statusDoc())
	framed[frameHeaderSize] ^= 0xFF // corrupt the payload

	good := EncodeFrame(rewardsDoc())

	payloads, rest := ExtractPayloads(append(framed, good...))
	require.Len(t, payloads, 1)
	assert.Equal(t, rewardsDoc(), payloads[0])
	assert.Empty(t, rest)
}

func TestExtractPayloadsBareDocument(t *testing.T) {
	payloads, rest := ExtractPayloads(statusDoc())
	require.Len(t, payloads, 1)
	assert.Equal(t, statusDoc(), payloads[0])
	assert.Empty(t, rest)
}

func TestExtractPayloadsConcatenatedBareDocuments(t *testing.T) {
	buf := append(append([]byte{}, statusDoc()...), rewardsDoc()...)

	payloads, rest := ExtractPayloads(buf)
	require.Len(t, payloads, 2)
	assert.Equal(t, statusDoc(), payloads[0])
	assert.Equal(t, rewardsDoc(), payloads[1])
	assert.Empty(t, rest)
}

func TestExtractPayloadsConcatenatedInsideOneFrame(t *testing.T) {
	combined := append(append([]byte{}, statusDoc()...), rewardsDoc()...)

	payloads, rest := ExtractPayloads(EncodeFrame(combined))
	require.Len(t, payloads, 2)
	assert.Equal(t, statusDoc(), payloads[0])
	assert.Equal(t, rewardsDoc(), payloads[1])
	assert.Empty(t, rest)
}

func TestExtractPayloadsGarbageBeforeFrame(t *testing.T) {
	buf := append([]byte("noise without meaning"), EncodeFrame(statusDoc())...)

	payloads, rest := ExtractPayloads(buf)
	require.Len(t, payloads, 1)
	assert.Equal(t, statusDoc(), payloads[0])
	assert.Empty(t, rest)
}

func TestExtractPayloadsIncompleteBareDocumentWaits(t *testing.T) {
	partial := []byte("<GetRewardsRequest><POSSequenceID>2</POSSequenceID>")

	payloads, rest := ExtractPayloads(partial)
	assert.Empty(t, payloads)
	assert.Equal(t, partial, rest)
}

func TestExtractPayloadsUnknownFramedPayloadPassesThrough(t *testing.T) {
	// Unknown documents still reach the handler so it can answer Not Found.
	unknown := []byte("<SomethingElse></SomethingElse>")

	payloads, rest := ExtractPayloads(EncodeFrame(unknown))
	require.Len(t, payloads, 1)
	assert.Equal(t, unknown, payloads[0])
	assert.Empty(t, rest)
}

func TestExtractPayloadsBufferCap(t *testing.T) {
	// Unstructured garbage with no '<' never accumulates.
	payloads, rest := ExtractPayloads(make([]byte, maxBufferBytes+1024))
	assert.Empty(t, payloads)
	assert.LessOrEqual(t, len(rest), maxBufferBytes)
}
