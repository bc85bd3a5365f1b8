package export

import (
	"io"

	jsoniter "github.com/json-iterator/go"
)

// JSON rendering streams each row as an object whose keys follow the column
// order exactly. Encoding through a struct would tie key order to field
// order; the stream makes the contract explicit.

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func writeJSON(w io.Writer, header []string, records [][]string) error {
	stream := json.BorrowStream(w)
	defer json.ReturnStream(stream)

	stream.WriteArrayStart()
	for i, rec := range records {
		if i > 0 {
			stream.WriteMore()
		}
		stream.WriteObjectStart()
		for j, col := range header {
			if j > 0 {
				stream.WriteMore()
			}
			stream.WriteObjectField(col)
			stream.WriteString(rec[j])
		}
		stream.WriteObjectEnd()
	}
	stream.WriteArrayEnd()
	return stream.Flush()
}

func WriteCommentsJSON(w io.Writer, rows []CommentRow) error {
	records := make([][]string, len(rows))
	for i, r := range rows {
		records[i] = r.record()
	}
	return writeJSON(w, CommentColumns, records)
}

func WriteParticipantsJSON(w io.Writer, rows []ParticipantRow) error {
	records := make([][]string, len(rows))
	for i, r := range rows {
		records[i] = r.record()
	}
	return writeJSON(w, ParticipantColumns, records)
}

func WriteVotesJSON(w io.Writer, rows []VoteRow) error {
	records := make([][]string, len(rows))
	for i, r := range rows {
		records[i] = r.record()
	}
	return writeJSON(w, VoteColumns, records)
}
