package export

import (
	"encoding/csv"
	"io"
)

// CSV rendering uses the standard library writer: the format needs RFC 4180
// quoting and nothing more, and none of the serialisation libraries in use
// cover CSV.

func (r CommentRow) record() []string {
	return []string{
		r.Content,
		r.ID.String(),
		r.AuthorEmail,
		formatFloat(r.Agree),
		formatFloat(r.Disagree),
		formatFloat(r.Skipped),
		formatFloat(r.Convergence),
		formatFloat(r.Participation),
		r.Group,
		formatTime(r.Created),
	}
}

func (r ParticipantRow) record() []string {
	return []string{
		r.Participant,
		r.ID.String(),
		r.Name,
		formatFloat(r.Agree),
		formatFloat(r.Disagree),
		formatFloat(r.Skipped),
		formatFloat(r.Convergence),
		formatFloat(r.Participation),
		r.Group,
	}
}

func (r VoteRow) record() []string {
	return []string{
		r.Email,
		r.AuthorName,
		r.AuthorID.String(),
		r.Comment,
		r.CommentID.String(),
		r.ConversationID.String(),
		r.Choice.Label(),
		formatTime(r.Created),
	}
}

func writeCSV(w io.Writer, header []string, records [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, rec := range records {
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteCommentsCSV(w io.Writer, rows []CommentRow, tr Translator) error {
	records := make([][]string, len(rows))
	for i, r := range rows {
		records[i] = r.record()
	}
	return writeCSV(w, translate(CommentColumns, tr), records)
}

func WriteParticipantsCSV(w io.Writer, rows []ParticipantRow, tr Translator) error {
	records := make([][]string, len(rows))
	for i, r := range rows {
		records[i] = r.record()
	}
	return writeCSV(w, translate(ParticipantColumns, tr), records)
}

func WriteVotesCSV(w io.Writer, rows []VoteRow, tr Translator) error {
	records := make([][]string, len(rows))
	for i, r := range rows {
		records[i] = r.record()
	}
	return writeCSV(w, translate(VoteColumns, tr), records)
}
