package pos

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"log"
)

// POSLOYALTY frame layout: a 28-byte little-endian header followed by the
// XML payload.
//
//	offset 0  (12)  signature "POSLOYALTY\x00\x00"
//	offset 12 (4)   action, always 1
//	offset 16 (4)   payload length
//	offset 20 (4)   CRC32 (IEEE) of the payload
//	offset 24 (4)   CRC32 (IEEE) of header bytes [0:24]
var frameSignature = []byte("POSLOYALTY\x00\x00")

const (
	frameHeaderSize = 28
	frameAction     = 1

	// Per-connection receive buffer cap. Passport terminals occasionally
	// spray garbage between frames; on overflow the oldest half is dropped.
	maxBufferBytes = 64 * 1024
)

// EncodeFrame wraps an XML payload in the POSLOYALTY binary envelope.
// Outbound traffic is always framed.
func EncodeFrame(payload []byte) []byte {
	framed := make([]byte, frameHeaderSize+len(payload))
	copy(framed, frameSignature)
	binary.LittleEndian.PutUint32(framed[12:16], frameAction)
	binary.LittleEndian.PutUint32(framed[16:20], uint32(len(payload)))
	binary.LittleEndian.PutUint32(framed[20:24], crc32.ChecksumIEEE(payload))
	binary.LittleEndian.PutUint32(framed[24:28], crc32.ChecksumIEEE(framed[:24]))
	copy(framed[frameHeaderSize:], payload)
	return framed
}

// ExtractPayloads pulls every complete payload out of the receive buffer and
// returns the unconsumed remainder. Framed traffic is honoured first: the
// header fixes the payload length and both CRCs are checked (a mismatch
// drops the frame with a warning, never the connection). Bytes with no
// signature are scanned for bare XML documents instead; the POS sometimes
// ships unframed or concatenated documents.
func ExtractPayloads(buf []byte) ([][]byte, []byte) {
	var payloads [][]byte

	for {
		sig := bytes.Index(buf, frameSignature)
		if sig < 0 {
			docs, rest := splitDocuments(buf)
			payloads = append(payloads, docs...)
			buf = rest
			break
		}

		// Anything before the signature can only be bare XML.
		if sig > 0 {
			docs, _ := splitDocuments(buf[:sig])
			payloads = append(payloads, docs...)
			buf = buf[sig:]
		}

		if len(buf) < frameHeaderSize {
			break
		}
		payloadLen := int(binary.LittleEndian.Uint32(buf[16:20]))
		if len(buf) < frameHeaderSize+payloadLen {
			break
		}

		header := buf[:frameHeaderSize]
		payload := buf[frameHeaderSize : frameHeaderSize+payloadLen]
		buf = buf[frameHeaderSize+payloadLen:]

		wantData := binary.LittleEndian.Uint32(header[20:24])
		wantHeader := binary.LittleEndian.Uint32(header[24:28])
		if crc32.ChecksumIEEE(payload) != wantData || crc32.ChecksumIEEE(header[:24]) != wantHeader {
			log.Printf("⚠️ ExtractPayloads: dropping frame with CRC mismatch (len=%d)", payloadLen)
			continue
		}

		// A single frame may carry several concatenated documents. Payloads
		// with no recognizable document still go through so the handler can
		// answer Not Found.
		docs, _ := splitDocuments(payload)
		if len(docs) == 0 && bytes.ContainsRune(payload, '<') {
			docs = [][]byte{payload}
		}
		payloads = append(payloads, docs...)
	}

	if len(buf) > maxBufferBytes {
		log.Printf("⚠️ ExtractPayloads: receive buffer over %d bytes, discarding oldest half", maxBufferBytes)
		buf = buf[len(buf)/2:]
	}
	return payloads, buf
}

// knownRoots are the top-level document names the POS is known to send.
// Unframed scanning only trusts documents that start with one of these.
var knownRoots = []string{
	"GetLoyaltyOnlineStatusRequest",
	"GetRewardsRequest",
	"FinalizeRewardsRequest",
	"CancelTransactionRequest",
	"BeginCustomerRequest",
	"EndCustomerRequest",
}

// splitDocuments scans raw bytes for complete top-level XML documents by
// known root element and returns them plus the unconsumed tail.
func splitDocuments(raw []byte) ([][]byte, []byte) {
	var docs [][]byte

	for {
		start, root := nextKnownRoot(raw)
		if start < 0 {
			// No document opens here; nothing before a future '<' matters.
			return docs, tailFrom(raw)
		}

		closing := []byte("</" + root + ">")
		end := bytes.Index(raw[start:], closing)
		if end < 0 {
			// Document still arriving; keep from its opening tag.
			return docs, raw[start:]
		}

		docEnd := start + end + len(closing)
		docs = append(docs, raw[start:docEnd])
		raw = raw[docEnd:]
	}
}

// nextKnownRoot finds the earliest opening tag of any known root element.
func nextKnownRoot(raw []byte) (int, string) {
	best, bestRoot := -1, ""
	for _, root := range knownRoots {
		if i := bytes.Index(raw, []byte("<"+root)); i >= 0 && (best < 0 || i < best) {
			best, bestRoot = i, root
		}
	}
	return best, bestRoot
}

// tailFrom keeps the bytes from the last '<' onward so a tag split across
// reads survives until the rest arrives.
func tailFrom(raw []byte) []byte {
	if i := bytes.LastIndexByte(raw, '<'); i >= 0 {
		return raw[i:]
	}
	return nil
}
