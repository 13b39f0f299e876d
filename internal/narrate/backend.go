package narrate

// ContentBlock is one element of a structured content list.
type ContentBlock struct {
	Text string
}

// Response is the payload a narration backend returns. Backends either fill
// the flat Text field or a structured Content list; extraction prefers Text.
type Response struct {
	Text    string
	Content []ContentBlock
}
