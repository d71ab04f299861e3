package lastupdate

import "time"

// Run records the progress of one daily capture. DownloadComplete flips once
// every profile document for the date is cached, ParsingComplete once every
// row is in the sink. A date only counts for boards after both are set.
type Run struct {
	Date             time.Time
	DownloadComplete bool
	ParsingComplete  bool
}

func (r Run) Complete() bool {
	return r.DownloadComplete && r.ParsingComplete
}
