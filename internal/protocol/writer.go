package protocol

import "io"

// WriteMessage appends Terminator to msg and writes it to w in one call.
func WriteMessage(w io.Writer, msg string) error {
	_, err := w.Write(append([]byte(msg), Terminator...))
	return err
}
