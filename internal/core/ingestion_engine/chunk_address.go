package ingestion_engine

import "strconv"

// ChunkIDSeparator joins the document id and the chunk ordinal.
const ChunkIDSeparator = "-"

// ChunkID returns the composite id shared by a chunk's vector and its stored text.
func ChunkID(documentID string, ordinal int) string {
	return documentID + ChunkIDSeparator + strconv.Itoa(ordinal)
}

// AssignIDs addresses count consecutive chunks beginning at startIndex.
func AssignIDs(documentID string, startIndex, count int) []string {
	ids := make([]string, count)
	for k := range ids {
		ids[k] = ChunkID(documentID, startIndex+k)
	}
	return ids
}
