package models

// BinaryPayload is a downloaded attachment or report.
type BinaryPayload struct {
	Name        string
	ContentType string
	Data        []byte
}

func (p *BinaryPayload) Size() int {
	return len(p.Data)
}
